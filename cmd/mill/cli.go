package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sworl/mill/internal/errors"
	"github.com/sworl/mill/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(app *ops.App) *cli.App {
	cliApp := &cli.App{
		Name:    "mill",
		Usage:   "Asset catalog browser for markdown vaults",
		Version: Version,
		Commands: []*cli.Command{
			searchCmd(app),
			browseCmd(app),
			creatorsCmd(app),
			packsCmd(app),
			getCmd(app),
			pageCmd(app),
			loginCmd(app),
			logoutCmd(app),
			whoamiCmd(app),
			refreshCmd(app),
			clearCacheCmd(app),
			historyCmd(app),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// searchCmd creates the search command.
func searchCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the asset catalog (!i/!s/!t select a type, #key:value filters text tags)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, app, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// browseCmd creates the browse command.
func browseCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog page by page",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "creator", Aliases: []string{"c"}, Value: -1, Usage: "Creator index (see 'mill creators'), -1 = all"},
			&cli.StringFlag{Name: "packs", Usage: "Comma-separated pack ids"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Asset type: image|sound|text"},
			&cli.StringFlag{Name: "terms", Usage: "Free-text terms"},
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "0-based page"},
		},
		Action: func(c *cli.Context) error {
			input := ops.BrowseInput{
				Type:  c.String("type"),
				Terms: c.String("terms"),
				Page:  c.Int("page"),
			}
			creator := c.Int("creator")
			input.Creator = &creator
			if packs := c.String("packs"); packs != "" {
				ids, err := parseIDs(packs)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Packs = ids
			}

			output, err := ops.Browse(c.Context, app, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// creatorsCmd creates the creators command.
func creatorsCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "creators",
		Usage: "List the catalog's creators",
		Action: func(c *cli.Context) error {
			output, err := ops.Creators(c.Context, app)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// packsCmd creates the packs command.
func packsCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:      "packs",
		Usage:     "List the pack groups of one creator",
		ArgsUsage: "<creator-index>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("creator index is required"))
			}
			idx, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return outputError(errors.NewInvalidRequest("creator index must be a number"))
			}

			output, err := ops.Packs(c.Context, app, ops.PacksInput{Creator: idx})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Look up one asset by pack and path",
		ArgsUsage: "<pack> <path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "download", Aliases: []string{"d"}, Usage: "Download the asset into the vault"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("pack and path are required"))
			}

			output, err := ops.Get(c.Context, app, ops.GetInput{
				Pack:     c.Args().Get(0),
				Path:     c.Args().Get(1),
				Download: c.Bool("download"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pageCmd creates the page command.
func pageCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:      "page",
		Usage:     "Hydrate a markdown page under the download prefix",
		ArgsUsage: "<vault-path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "Write the resolved content into the vault"},
			&cli.BoolFlag{Name: "html", Usage: "Include an HTML rendering"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("vault path is required"))
			}

			output, err := ops.Page(c.Context, app, ops.PageInput{
				Path:  c.Args().First(),
				Write: c.Bool("write"),
				HTML:  c.Bool("html"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// loginCmd creates the login command.
func loginCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Link this vault to a Moulinette account",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-wait", Usage: "Print the consent URL without waiting for confirmation"},
		},
		Action: func(c *cli.Context) error {
			wait := !c.Bool("no-wait")
			if wait {
				fmt.Fprintln(os.Stderr, "Open the URL below in a browser; you have 2 minutes to complete the process.")
			}

			output, err := ops.Login(c.Context, app, ops.LoginInput{Wait: wait})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// logoutCmd creates the logout command.
func logoutCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the session and clear the cache",
		Action: func(c *cli.Context) error {
			output, err := ops.Logout(app)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// whoamiCmd creates the whoami command.
func whoamiCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the linked account",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Bypass the service's user-info cache"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Whoami(c.Context, app, ops.WhoamiInput{
				ForceRefresh: c.Bool("force"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// refreshCmd creates the refresh command.
func refreshCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Force a catalog refetch",
		Action: func(c *cli.Context) error {
			output, err := ops.Refresh(c.Context, app)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// clearCacheCmd creates the clear-cache command.
func clearCacheCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "clear-cache",
		Usage: "Discard the cached catalog",
		Action: func(c *cli.Context) error {
			output, err := ops.ClearCache(app)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(app *ops.App) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent downloads, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of entries"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(app, ops.HistoryInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if millErr, ok := err.(*errors.MillError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", millErr.Code, millErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseIDs splits a comma-separated string into numeric ids.
func parseIDs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pack id: %s", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
