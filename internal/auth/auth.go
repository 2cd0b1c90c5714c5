// Package auth implements the account-linking handshake. Linking opens a
// Patreon consent page carrying a fresh one-time state; the catalog service
// marks that state ready once the user completes the flow, and the state
// then becomes the session identifier.
package auth

import (
	"context"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sworl/mill/internal/client"
)

// PollBudget is the number of one-second ticks before a link attempt is
// declared timed out.
const PollBudget = 120

// Readiness checks whether a link state has been confirmed server-side.
type Readiness interface {
	CheckReady(ctx context.Context, state string) (bool, error)
	ServerURL() string
}

// NewState returns a fresh 26-character link state, which doubles as the
// session identifier once the link completes.
func NewState() string {
	return ulid.Make().String()
}

// AuthorizeURL builds the consent page URL for the given state.
func AuthorizeURL(serverURL, state string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", client.ClientID)
	v.Set("redirect_uri", serverURL+"/patreon/callback")
	v.Set("scope", "identity identity.memberships")
	v.Set("state", state)
	return "https://www.patreon.com/oauth2/authorize?" + v.Encode()
}

// Linker polls the catalog service until a link state is confirmed.
type Linker struct {
	client   Readiness
	interval time.Duration
	budget   int
}

// Option configures a Linker.
type Option func(*Linker)

// WithInterval overrides the tick interval, for tests.
func WithInterval(interval time.Duration) Option {
	return func(l *Linker) { l.interval = interval }
}

// WithBudget overrides the tick budget, for tests.
func WithBudget(budget int) Option {
	return func(l *Linker) { l.budget = budget }
}

// NewLinker creates a linker over the given readiness check.
func NewLinker(c Readiness, opts ...Option) *Linker {
	l := &Linker{client: c, interval: time.Second, budget: PollBudget}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WaitForLink blocks until the state is confirmed, the tick budget runs out
// or the context is canceled. The service is polled on every other tick;
// poll errors are treated as "not yet" and polling continues. Returns true
// when the link was confirmed within the budget.
func (l *Linker) WaitForLink(ctx context.Context, state string) (bool, error) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for tick := l.budget; tick > 0; tick-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
		if tick%2 == 0 {
			continue
		}
		ready, err := l.client.CheckReady(ctx, state)
		if err != nil {
			continue
		}
		if ready {
			return true, nil
		}
	}
	return false, nil
}
