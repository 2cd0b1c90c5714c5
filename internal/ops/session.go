package ops

import (
	"context"

	"github.com/sworl/mill/internal/auth"
	"github.com/sworl/mill/internal/config"
	"github.com/sworl/mill/internal/errors"
)

// LoginInput contains parameters for the Login operation.
type LoginInput struct {
	// Wait blocks until the link is confirmed or the poll budget runs out.
	// Without it the operation only returns the consent URL.
	Wait bool
}

// LoginOutput contains the consent URL and, after waiting, the link result.
type LoginOutput struct {
	URL    string `json:"url"`
	Linked bool   `json:"linked"`
}

// Login starts the account-linking handshake. The returned URL must be
// opened in a browser; once the user completes the flow there, the link
// state becomes the session identifier and the catalog cache is cleared so
// the next fetch sees the linked account's content.
func Login(ctx context.Context, a *App, input LoginInput) (*LoginOutput, error) {
	state := auth.NewState()
	out := &LoginOutput{URL: auth.AuthorizeURL(a.Client.ServerURL(), state)}
	if !input.Wait {
		return out, nil
	}

	linker := a.Linker
	if linker == nil {
		linker = auth.NewLinker(a.Client)
	}
	linked, err := linker.WaitForLink(ctx, state)
	if err != nil {
		return nil, err
	}
	if !linked {
		return out, nil
	}

	a.Config.SessionID = state
	if err := config.Save(a.ConfigDir, a.Config); err != nil {
		return nil, err
	}
	a.Cache.Clear()
	out.Linked = true
	return out, nil
}

// LogoutOutput confirms the session was discarded.
type LogoutOutput struct {
	LoggedOut bool `json:"logged_out"`
}

// Logout discards the session identifier and clears the catalog cache.
func Logout(a *App) (*LogoutOutput, error) {
	a.Config.SessionID = ""
	if err := config.Save(a.ConfigDir, a.Config); err != nil {
		return nil, err
	}
	a.Cache.Clear()
	return &LogoutOutput{LoggedOut: true}, nil
}

// WhoamiInput contains parameters for the Whoami operation.
type WhoamiInput struct {
	ForceRefresh bool // bypass the service's own user-info cache
}

// Pledge is one support tier of the linked account.
type Pledge struct {
	Vanity string `json:"vanity"`
	Pledge string `json:"pledge"`
}

// WhoamiOutput describes the linked account.
type WhoamiOutput struct {
	Linked   bool     `json:"linked"`
	ID       int      `json:"id,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	Patron   bool     `json:"patron"`
	Pledges  []Pledge `json:"pledges,omitempty"`
}

// Whoami fetches the linked account's profile. The service rotates the
// session identifier periodically; a rotation arrives as a new identifier
// in the response and is persisted immediately.
func Whoami(ctx context.Context, a *App, input WhoamiInput) (*WhoamiOutput, error) {
	if a.Config.SessionID == "" {
		return &WhoamiOutput{Linked: false}, nil
	}

	info, err := a.Client.FetchUserInfo(ctx, a.Config.SessionID, input.ForceRefresh)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.NewTransport(a.Client.ServerURL(), nil)
	}

	if info.GUID != "" {
		a.Config.SessionID = info.GUID
		if err := config.Save(a.ConfigDir, a.Config); err != nil {
			return nil, err
		}
	}

	out := &WhoamiOutput{
		Linked:   true,
		ID:       info.ID,
		FullName: info.FullName,
		Patron:   info.Patron,
	}
	for _, p := range info.Pledges {
		out.Pledges = append(out.Pledges, Pledge{Vanity: p.Vanity, Pledge: p.Pledge})
	}
	return out, nil
}
