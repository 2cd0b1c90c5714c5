package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sworl/mill/internal/browse"
	"github.com/sworl/mill/internal/cache"
	"github.com/sworl/mill/internal/client"
	"github.com/sworl/mill/internal/config"
	"github.com/sworl/mill/internal/db"
	"github.com/sworl/mill/internal/download"
	"github.com/sworl/mill/internal/mcp"
	"github.com/sworl/mill/internal/ops"
	"github.com/sworl/mill/internal/resolve"
	"github.com/sworl/mill/internal/vault"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"search": true, "browse": true, "creators": true, "packs": true,
	"get": true, "page": true, "login": true, "logout": true,
	"whoami": true, "refresh": true, "clear-cache": true, "history": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   __  __ _ _ _
  |  \/  (_) | |
  | |\/| | | | |
  |_|  |_|_|_|_|

  Asset catalog browser for markdown vaults

  Usage: mill <command> [options]
         mill --help

  MCP server mode requires piped input.`)
}

// buildApp wires the long-lived dependencies from the config directory.
func buildApp(baseDir string) (*ops.App, func(), error) {
	store, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	vaultDir := cfg.VaultDir
	if vaultDir == "" {
		vaultDir = "."
	}
	v, err := vault.NewDir(vaultDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to open vault: %w", err)
	}

	c := client.New(cfg.ServerURL)
	session := func() string { return cfg.SessionID }
	cc := cache.New(c, session, cache.WithStore(store))
	dl := download.New(c, v, cfg.DownloadFolder, download.WithStore(store))

	app := &ops.App{
		Cache:      cc,
		Client:     c,
		Resolver:   resolve.New(dl, c, cc, session),
		Downloader: dl,
		Vault:      v,
		Config:     cfg,
		ConfigDir:  baseDir,
		Store:      store,
		Filters:    browse.NewFilters(),
	}
	return app, func() { store.Close() }, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		cliApp := newCLIApp(nil)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, ".mill")

	app, cleanup, err := buildApp(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// CLI mode: known subcommand
	if isCLIMode() {
		cliApp := newCLIApp(app)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'mill --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(app, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
