package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreSaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	rep := New(ModeDebug, "@testbot")
	rep.Structure.Start = nil
	score := 85
	rep.HealthScore = &score
	rep.Finish()

	path, err := store.Save(rep)
	if err != nil {
		t.Fatal(err)
	}
	if rep.SavedTo != path {
		t.Errorf("SavedTo = %q, want %q", rep.SavedTo, path)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "testbot_debug_") || !strings.HasSuffix(name, ".json") {
		t.Errorf("filename = %q", name)
	}

	loaded, err := store.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunID != rep.RunID || loaded.BotUsername != "@testbot" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.HealthScore == nil || *loaded.HealthScore != 85 {
		t.Error("health score lost in round trip")
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir())

	first := New(ModeBlueprint, "@one")
	if _, err := store.Save(first); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	second := New(ModeBlueprint, "@two")
	if _, err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name, "two_") {
		t.Errorf("newest entry = %q", entries[0].Name)
	}
}

func TestStoreListEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested"))
	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v", entries)
	}
}

func TestSafeFilename(t *testing.T) {
	rep := New(ModeBlueprint, `@my/bad:bot`)
	store := NewStore(t.TempDir())
	path, err := store.Save(rep)
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Base(path)
	if strings.ContainsAny(name, `/:`) {
		t.Errorf("unsafe filename %q", name)
	}
}
