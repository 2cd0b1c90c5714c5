package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sworl/mill/internal/browse"
	"github.com/sworl/mill/internal/cache"
	"github.com/sworl/mill/internal/client"
	"github.com/sworl/mill/internal/config"
	"github.com/sworl/mill/internal/db"
	"github.com/sworl/mill/internal/download"
	"github.com/sworl/mill/internal/ops"
	"github.com/sworl/mill/internal/resolve"
	"github.com/sworl/mill/internal/vault"
)

// testCreatorsJSON is the service's raw catalog payload.
func testCreatorsJSON(storageBase string) string {
	return `[
		{
			"publisher": "Acme",
			"packs": [{
				"id": 42,
				"name": "Castle HD",
				"path": "` + storageBase + `/creators/acme/pack1",
				"sas": "sig=abc",
				"assets": ["maps/castle.webp", {"type": "snd", "path": "sounds/gate.ogg", "duration": 65}]
			}]
		},
		{
			"publisher": "Bellows",
			"packs": [{
				"id": 7,
				"name": "Adventures",
				"path": "https://github.com/bellows/packA.git",
				"assets": [
					{"type": "md", "path": "packA/notes/page.md", "meta": {"description": "An NPC", "type": "npc", "subtype": "human"}}
				]
			}]
		}
	]`
}

// setupTestApp wires a full App over httptest servers and a temp vault.
func setupTestApp(t *testing.T) (*ops.App, string) {
	t.Helper()

	// storage lives on its own host so its URLs take the generic
	// local-path mapping, as in production
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-content"))
	}))
	t.Cleanup(storage.Close)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/assets/download-asset/") {
			w.Write([]byte("# Page\n\n[[packA/notes/page.md]]"))
			return
		}
		if strings.HasPrefix(r.URL.Path, "/assets/") {
			w.Write([]byte(testCreatorsJSON(storage.URL)))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	vaultDir := t.TempDir()
	v, err := vault.NewDir(vaultDir)
	if err != nil {
		t.Fatalf("failed to create vault: %v", err)
	}

	store, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.ServerURL = server.URL
	c := client.New(server.URL)

	session := func() string { return cfg.SessionID }
	cc := cache.New(c, session)
	dl := download.New(c, v, cfg.DownloadFolder, download.WithStore(store))
	res := resolve.New(dl, c, cc, session, resolve.WithNow(func() time.Time {
		return time.UnixMilli(1700000000000)
	}))

	app := &ops.App{
		Cache:      cc,
		Client:     c,
		Resolver:   res,
		Downloader: dl,
		Vault:      v,
		Config:     cfg,
		ConfigDir:  t.TempDir(),
		Store:      store,
		Filters:    browse.NewFilters(),
		Now:        func() time.Time { return time.UnixMilli(1700000000000) },
	}
	return app, vaultDir
}

// runCLI executes one command and returns its captured stdout.
func runCLI(t *testing.T, app *ops.App, args ...string) (string, error) {
	t.Helper()

	cliApp := newCLIApp(app)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := cliApp.Run(append([]string{"mill"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestParseIDs tests the parseIDs helper function.
func TestParseIDs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
		wantErr  bool
	}{
		{
			name:     "single id",
			input:    "42",
			expected: []int{42},
		},
		{
			name:     "multiple ids",
			input:    "1,2,3",
			expected: []int{1, 2, 3},
		},
		{
			name:     "ids with spaces",
			input:    " 1 , 2 ,3",
			expected: []int{1, 2, 3},
		},
		{
			name:     "empty parts filtered",
			input:    "1,,2,",
			expected: []int{1, 2},
		},
		{
			name:    "non-numeric",
			input:   "1,x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseIDs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d ids, got %d", len(tt.expected), len(result))
			}
			for i, id := range result {
				if id != tt.expected[i] {
					t.Errorf("expected id[%d]=%d, got %d", i, tt.expected[i], id)
				}
			}
		})
	}
}

// TestCLISearch tests the search command.
func TestCLISearch(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "search", "castle")
	if err != nil {
		t.Fatalf("search command failed: %v", err)
	}

	var output ops.SearchOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if output.Total != 1 {
		t.Fatalf("expected total=1, got %d", output.Total)
	}
	if output.Items[0].Name != "Castle" {
		t.Errorf("expected name=Castle, got %s", output.Items[0].Name)
	}
	if output.Items[0].Creator != "Acme" {
		t.Errorf("expected creator=Acme, got %s", output.Items[0].Creator)
	}
}

// TestCLISearchTypeBang tests type selection through the query grammar.
func TestCLISearchTypeBang(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "search", "!s", "gate")
	if err != nil {
		t.Fatalf("search command failed: %v", err)
	}

	var output ops.SearchOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.Total != 1 {
		t.Fatalf("expected total=1, got %d", output.Total)
	}
	if output.Items[0].Kind != "sound" {
		t.Errorf("expected kind=sound, got %s", output.Items[0].Kind)
	}
	if output.Items[0].Duration != "1:05" {
		t.Errorf("expected duration=1:05, got %s", output.Items[0].Duration)
	}
}

// TestCLICreators tests the creators command.
func TestCLICreators(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "creators")
	if err != nil {
		t.Fatalf("creators command failed: %v", err)
	}

	var output ops.CreatorsOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 2 {
		t.Fatalf("expected 2 creators, got %d", len(output.Items))
	}
	// creators come out sorted by name
	if output.Items[0].Name != "Acme" || output.Items[1].Name != "Bellows" {
		t.Errorf("unexpected creator order: %+v", output.Items)
	}
}

// TestCLIPacks tests the packs command.
func TestCLIPacks(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "packs", "0")
	if err != nil {
		t.Fatalf("packs command failed: %v", err)
	}

	var output ops.PacksOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Groups) != 1 {
		t.Fatalf("expected 1 pack group, got %d", len(output.Groups))
	}
	if output.Groups[0].Name != "Castle" {
		t.Errorf("expected group name=Castle, got %s", output.Groups[0].Name)
	}

	t.Run("missing index", func(t *testing.T) {
		_, err := runCLI(t, app, "packs")
		if err == nil {
			t.Fatal("expected error for missing creator index")
		}
		if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("expected INVALID_REQUEST error, got %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := runCLI(t, app, "packs", "9")
		if err == nil {
			t.Fatal("expected error for out-of-range creator index")
		}
		if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("expected INVALID_REQUEST error, got %v", err)
		}
	})
}

// TestCLIBrowse tests the browse command.
func TestCLIBrowse(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "browse")
	if err != nil {
		t.Fatalf("browse command failed: %v", err)
	}

	var output ops.BrowseOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(output.Items))
	}
	if output.Exhausted {
		t.Error("first page must not be exhausted")
	}

	t.Run("restrict to creator", func(t *testing.T) {
		out, err := runCLI(t, app, "browse", "--creator", "1")
		if err != nil {
			t.Fatalf("browse command failed: %v", err)
		}

		var output ops.BrowseOutput
		if err := json.Unmarshal([]byte(out), &output); err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}

		if len(output.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(output.Items))
		}
		if output.Items[0].Creator != "Bellows" {
			t.Errorf("expected creator=Bellows, got %s", output.Items[0].Creator)
		}
	})

	t.Run("bad packs flag", func(t *testing.T) {
		_, err := runCLI(t, app, "browse", "--packs", "1,x")
		if err == nil {
			t.Fatal("expected error for non-numeric pack id")
		}
		if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("expected INVALID_REQUEST error, got %v", err)
		}
	})
}

// TestCLIGet tests the get command.
func TestCLIGet(t *testing.T) {
	app, vaultDir := setupTestApp(t)

	out, err := runCLI(t, app, "get", "--download", "42", "maps/castle.webp")
	if err != nil {
		t.Fatalf("get command failed: %v", err)
	}

	var output ops.GetOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if output.LocalPath != "moulinette/creators/acme/pack1/maps/castle.webp" {
		t.Errorf("unexpected local path: %s", output.LocalPath)
	}
	data, err := os.ReadFile(filepath.Join(vaultDir, output.LocalPath))
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != "binary-content" {
		t.Errorf("unexpected file content: %s", data)
	}

	t.Run("unknown asset", func(t *testing.T) {
		_, err := runCLI(t, app, "get", "42", "maps/nope.webp")
		if err == nil {
			t.Fatal("expected error for unknown asset")
		}
		if !strings.Contains(err.Error(), "[NOT_FOUND]") {
			t.Errorf("expected NOT_FOUND error, got %v", err)
		}
	})

	t.Run("missing args", func(t *testing.T) {
		_, err := runCLI(t, app, "get", "42")
		if err == nil {
			t.Fatal("expected error for missing path")
		}
		if !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("expected INVALID_REQUEST error, got %v", err)
		}
	})
}

// TestCLIPage tests the page command.
func TestCLIPage(t *testing.T) {
	app, vaultDir := setupTestApp(t)

	out, err := runCLI(t, app, "page", "--write", "moulinette/packA/notes/page.md")
	if err != nil {
		t.Fatalf("page command failed: %v", err)
	}

	var output ops.PageOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if !strings.Contains(output.Markdown, "# Page") {
		t.Errorf("unexpected markdown: %s", output.Markdown)
	}
	if !output.Written {
		t.Error("expected written=true")
	}
	if _, err := os.Stat(filepath.Join(vaultDir, "moulinette/packA/notes/page.md")); err != nil {
		t.Errorf("resolved page missing from vault: %v", err)
	}

	t.Run("outside prefix", func(t *testing.T) {
		_, err := runCLI(t, app, "page", "elsewhere/page.md")
		if err == nil {
			t.Fatal("expected error for path outside the download folder")
		}
		if !strings.Contains(err.Error(), "[NO_MATCH]") {
			t.Errorf("expected NO_MATCH error, got %v", err)
		}
	})
}

// TestCLIRefreshAndClearCache tests the cache maintenance commands.
func TestCLIRefreshAndClearCache(t *testing.T) {
	app, _ := setupTestApp(t)

	out, err := runCLI(t, app, "refresh")
	if err != nil {
		t.Fatalf("refresh command failed: %v", err)
	}

	var refreshed ops.RefreshOutput
	if err := json.Unmarshal([]byte(out), &refreshed); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if refreshed.Creators != 2 || refreshed.Assets != 3 {
		t.Errorf("unexpected refresh counts: %+v", refreshed)
	}

	out, err = runCLI(t, app, "clear-cache")
	if err != nil {
		t.Fatalf("clear-cache command failed: %v", err)
	}

	var cleared ops.ClearCacheOutput
	if err := json.Unmarshal([]byte(out), &cleared); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if !cleared.Cleared {
		t.Error("expected cleared=true")
	}
}

// TestCLIHistory tests the history command.
func TestCLIHistory(t *testing.T) {
	app, _ := setupTestApp(t)

	if _, err := runCLI(t, app, "get", "--download", "42", "maps/castle.webp"); err != nil {
		t.Fatalf("get command failed: %v", err)
	}

	out, err := runCLI(t, app, "history")
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}

	var output ops.HistoryOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if len(output.Items) != 1 {
		t.Fatalf("expected 1 download, got %d", len(output.Items))
	}
	if output.Items[0].LocalPath != "moulinette/creators/acme/pack1/maps/castle.webp" {
		t.Errorf("unexpected ledger entry: %+v", output.Items[0])
	}
}

// TestCLILogout tests the logout command.
func TestCLILogout(t *testing.T) {
	app, _ := setupTestApp(t)
	app.Config.SessionID = "01HV3ZQ4X5Y6Z7A8B9C0D1E2F3"

	out, err := runCLI(t, app, "logout")
	if err != nil {
		t.Fatalf("logout command failed: %v", err)
	}

	var output ops.LogoutOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if app.Config.SessionID != "" {
		t.Errorf("expected session to be discarded, got %q", app.Config.SessionID)
	}
}

// TestIsCLIMode tests subcommand detection against os.Args.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{"no args", []string{"mill"}, false},
		{"known command", []string{"mill", "search", "castle"}, true},
		{"help flag", []string{"mill", "--help"}, true},
		{"version flag", []string{"mill", "-v"}, true},
		{"unknown arg", []string{"mill", "bogus"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			os.Args = tt.args
			defer func() { os.Args = oldArgs }()

			if got := isCLIMode(); got != tt.expected {
				t.Errorf("isCLIMode() = %v, want %v", got, tt.expected)
			}
		})
	}
}
