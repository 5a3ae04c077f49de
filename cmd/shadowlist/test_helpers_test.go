package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type apiItem struct {
	ID      string
	Title   string
	Channel string
	VideoID string
}

type positionCall struct {
	ItemID   string
	Position int
}

// fakeAPI is a minimal in-memory stand-in for the YouTube Data API, serving
// just the endpoints the client uses.
type fakeAPI struct {
	mu            sync.Mutex
	playlistID    string
	playlistTitle string
	items         []apiItem
	positionCalls []positionCall
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		playlistID:    "PL1",
		playlistTitle: "Road Trip Mix",
		items: []apiItem{
			{ID: "item-a", Title: "First Song", Channel: "Alpha", VideoID: "video-a"},
			{ID: "item-b", Title: "Second Song", Channel: "Beta", VideoID: "video-b"},
			{ID: "item-c", Title: "Third Song", Channel: "Gamma", VideoID: "video-c"},
		},
	}
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/playlists" && r.Method == http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" && id != a.playlistID {
			writeJSON(w, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, map[string]any{
			"items": []any{map[string]any{
				"id": a.playlistID,
				"snippet": map[string]any{
					"title":        a.playlistTitle,
					"channelTitle": "Test Account",
				},
				"contentDetails": map[string]any{"itemCount": len(a.items)},
			}},
		})

	case r.URL.Path == "/playlistItems" && r.Method == http.MethodGet:
		if r.URL.Query().Get("playlistId") != a.playlistID {
			writeJSON(w, map[string]any{"items": []any{}})
			return
		}
		items := make([]any, 0, len(a.items))
		for i, it := range a.items {
			items = append(items, map[string]any{
				"id": it.ID,
				"snippet": map[string]any{
					"title":                  it.Title,
					"position":               i,
					"playlistId":             a.playlistID,
					"resourceId":             map[string]any{"kind": "youtube#video", "videoId": it.VideoID},
					"videoOwnerChannelTitle": it.Channel,
				},
			})
		}
		writeJSON(w, map[string]any{"items": items})

	case r.URL.Path == "/playlistItems" && r.Method == http.MethodPut:
		var body struct {
			ID      string `json:"id"`
			Snippet struct {
				Position int `json:"position"`
			} `json:"snippet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.positionCalls = append(a.positionCalls, positionCall{ItemID: body.ID, Position: body.Snippet.Position})
		writeJSON(w, map[string]any{"id": body.ID})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type cliTestEnv struct {
	api        *fakeAPI
	libraryDir string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("YOUTUBE_OAUTH_TOKEN", "test-token")

	api := newFakeAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	libraryDir := filepath.Join(base, "library")
	configPath := filepath.Join(homeDir, ".config", "shadowlist", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(
		"[paths]\nlibrary_dir = %q\n\n[youtube]\nbase_url = %q\npage_size = 50\n\n[index]\nenabled = true\n\n[logging]\nlevel = %q\nformat = %q\n",
		libraryDir, server.URL, "error", "json",
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		api:        api,
		libraryDir: libraryDir,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
