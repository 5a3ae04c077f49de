package main

import (
	"os"
	"path/filepath"
	"testing"

	"shadowlist/internal/shadow"
)

func TestIngestAllCreatesLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, "ingest", "--all"); err != nil {
		t.Fatalf("ingest --all: %v", err)
	}

	playlistsDir := filepath.Join(env.libraryDir, "playlists")
	entries, err := os.ReadDir(playlistsDir)
	if err != nil {
		t.Fatalf("read playlists dir: %v", err)
	}
	var shadowFile string
	for _, e := range entries {
		if !e.IsDir() {
			shadowFile = filepath.Join(playlistsDir, e.Name())
		}
	}
	if shadowFile == "" {
		t.Fatal("no shadow file created")
	}

	text, err := os.ReadFile(shadowFile)
	if err != nil {
		t.Fatalf("read shadow: %v", err)
	}
	sh, err := shadow.Parse(string(text))
	if err != nil {
		t.Fatalf("created shadow does not parse: %v", err)
	}
	if sh.ID != "PL1" || len(sh.Items) != 3 {
		t.Fatalf("unexpected shadow: id=%s items=%d", sh.ID, len(sh.Items))
	}

	if _, err := os.Stat(filepath.Join(playlistsDir, "full", "PL1.jsonl")); err != nil {
		t.Errorf("full dump missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.libraryDir, "videos.db")); err != nil {
		t.Errorf("video index missing: %v", err)
	}
}

func TestAnalyzeReportsInSync(t *testing.T) {
	setupCLITestEnv(t)

	if _, _, err := runCLI(t, "ingest", "--all"); err != nil {
		t.Fatalf("ingest --all: %v", err)
	}
	out, _, err := runCLI(t, "analyze", "--all")
	if err != nil {
		t.Fatalf("analyze --all: %v", err)
	}
	requireContains(t, out, "in sync")
}

func TestPushSendsPositionUpdates(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, "ingest", "--all"); err != nil {
		t.Fatalf("ingest --all: %v", err)
	}

	// Move the last item to the front locally.
	playlistsDir := filepath.Join(env.libraryDir, "playlists")
	entries, err := os.ReadDir(playlistsDir)
	if err != nil {
		t.Fatal(err)
	}
	var shadowFile string
	for _, e := range entries {
		if !e.IsDir() {
			shadowFile = filepath.Join(playlistsDir, e.Name())
		}
	}
	text, err := os.ReadFile(shadowFile)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := shadow.Parse(string(text))
	if err != nil {
		t.Fatal(err)
	}
	sh.Items = []*shadow.Item{sh.Items[2], sh.Items[0], sh.Items[1]}
	if err := os.WriteFile(shadowFile, []byte(sh.Serialize()), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "push", filepath.Base(shadowFile)); err != nil {
		t.Fatalf("push: %v", err)
	}

	calls := env.api.positionCalls
	if len(calls) != 1 {
		t.Fatalf("position calls = %v, want one", calls)
	}
	if calls[0].ItemID != "item-c" || calls[0].Position != 0 {
		t.Errorf("call = %+v, want item-c to position 0", calls[0])
	}
}

func TestPlaylistsListsShadowState(t *testing.T) {
	setupCLITestEnv(t)

	out, _, err := runCLI(t, "playlists")
	if err != nil {
		t.Fatalf("playlists: %v", err)
	}
	requireContains(t, out, "Road Trip Mix")
	requireContains(t, out, "no")

	if _, _, err := runCLI(t, "ingest", "--all"); err != nil {
		t.Fatalf("ingest --all: %v", err)
	}
	out, _, err = runCLI(t, "playlists")
	if err != nil {
		t.Fatalf("playlists: %v", err)
	}
	requireContains(t, out, "yes")
}

func TestResetPrunesLocalReorder(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, "ingest", "--all"); err != nil {
		t.Fatalf("ingest --all: %v", err)
	}

	playlistsDir := filepath.Join(env.libraryDir, "playlists")
	entries, err := os.ReadDir(playlistsDir)
	if err != nil {
		t.Fatal(err)
	}
	var shadowFile string
	for _, e := range entries {
		if !e.IsDir() {
			shadowFile = filepath.Join(playlistsDir, e.Name())
		}
	}
	text, err := os.ReadFile(shadowFile)
	if err != nil {
		t.Fatal(err)
	}
	sh, err := shadow.Parse(string(text))
	if err != nil {
		t.Fatal(err)
	}
	sh.Items = []*shadow.Item{sh.Items[1], sh.Items[2], sh.Items[0]}
	if err := os.WriteFile(shadowFile, []byte(sh.Serialize()), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := runCLI(t, "reset", filepath.Base(shadowFile)); err != nil {
		t.Fatalf("reset: %v", err)
	}

	text, err = os.ReadFile(shadowFile)
	if err != nil {
		t.Fatal(err)
	}
	sh, err = shadow.Parse(string(text))
	if err != nil {
		t.Fatal(err)
	}
	if sh.Items[0].Title != "First Song" || sh.Items[2].Title != "Third Song" {
		t.Errorf("reset did not restore remote order: %v, %v", sh.Items[0].Title, sh.Items[2].Title)
	}
}
