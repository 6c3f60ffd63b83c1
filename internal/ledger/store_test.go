package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// sameRecord compares records by value, with time fields compared as instants
// (the store restores timestamps in the local zone).
func sameRecord(got, want *FileRecord) bool {
	return got.Path == want.Path &&
		got.Size == want.Size &&
		got.CreatedAt.Equal(want.CreatedAt) &&
		got.LastAccessed.Equal(want.LastAccessed) &&
		got.AccessCount == want.AccessCount &&
		got.ParentFolder == want.ParentFolder &&
		got.Digest == want.Digest &&
		got.Deleted == want.Deleted
}

func TestRoundTrip(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	created := time.Date(2026, 2, 10, 9, 30, 0, 123456789, time.UTC)
	accessed := created.Add(3 * time.Hour)

	files := map[string]*FileRecord{
		"/home/u/a.pdf": {
			Path:         "/home/u/a.pdf",
			Size:         2048,
			CreatedAt:    created,
			LastAccessed: accessed,
			AccessCount:  4,
			ParentFolder: "/home/u",
			Digest:       "d41d8cd98f00b204e9800998ecf8427e",
		},
		"/home/u/b.tmp": {
			Path:         "/home/u/b.tmp",
			Size:         10,
			CreatedAt:    created.Add(time.Minute),
			ParentFolder: "/home/u",
			Deleted:      true,
		},
	}
	switches := []FolderSwitch{
		{Folder: "/home/u", At: created},
		{Folder: "/home/u/dl", At: created.Add(time.Minute)},
	}
	lastAnalysis := created.Add(6 * time.Hour)

	if err := store.Save(ctx, files, switches, lastAnalysis); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotFiles, gotSwitches, gotLast, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(gotFiles) != len(files) {
		t.Fatalf("loaded %d records, want %d", len(gotFiles), len(files))
	}
	for path, want := range files {
		got, ok := gotFiles[path]
		if !ok {
			t.Fatalf("record %s missing after round-trip", path)
		}
		if !sameRecord(got, want) {
			t.Errorf("record %s = %+v, want %+v", path, *got, *want)
		}
	}
	if len(gotSwitches) != len(switches) {
		t.Fatalf("loaded %d switches, want %d", len(gotSwitches), len(switches))
	}
	for i, want := range switches {
		got := gotSwitches[i]
		if got.Folder != want.Folder || !got.At.Equal(want.At) {
			t.Errorf("switch %d = %+v, want %+v", i, got, want)
		}
	}
	if !gotLast.Equal(lastAnalysis) {
		t.Errorf("lastAnalysis = %v, want %v", gotLast, lastAnalysis)
	}
}

func TestRoundTripEmptyOptionalFields(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	rec := &FileRecord{
		Path:         "/big.iso",
		Size:         200 << 20,
		CreatedAt:    time.Unix(0, 1700000000000000000),
		ParentFolder: "/",
	}
	if err := store.Save(ctx, map[string]*FileRecord{rec.Path: rec}, nil, time.Time{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	files, _, last, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := files["/big.iso"]
	if got == nil {
		t.Fatal("record missing")
	}
	if !got.LastAccessed.IsZero() {
		t.Errorf("LastAccessed = %v, want zero", got.LastAccessed)
	}
	if got.Digest != "" {
		t.Errorf("Digest = %q, want empty", got.Digest)
	}
	if !last.IsZero() {
		t.Errorf("lastAnalysis = %v, want zero", last)
	}
}

func TestSwitchHistoryTrimmedOnSave(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	switches := make([]FolderSwitch, 1200)
	for i := range switches {
		switches[i] = FolderSwitch{
			Folder: fmt.Sprintf("/f%d", i),
			At:     base.Add(time.Duration(i) * time.Minute),
		}
	}

	if err := store.Save(ctx, nil, switches, time.Time{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, got, _, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != maxSwitchHistory {
		t.Fatalf("loaded %d switches, want %d", len(got), maxSwitchHistory)
	}
	if got[0].Folder != "/f200" {
		t.Errorf("oldest retained switch = %s, want /f200", got[0].Folder)
	}
	if got[len(got)-1].Folder != "/f1199" {
		t.Errorf("newest retained switch = %s, want /f1199", got[len(got)-1].Folder)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestOpenRecoversCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite database at all"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open on corrupt store: %v", err)
	}
	defer store.Close()

	// The fresh store is usable and empty.
	l := New(store, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	l.Load(context.Background())
	if got := l.Stats(time.Now()).TrackedFiles; got != 0 {
		t.Errorf("TrackedFiles = %d, want 0", got)
	}

	// The corrupt original was preserved, not destroyed.
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt store was not moved aside: %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l := New(store, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	l.Put(ctx, FileRecord{Path: "/keep", CreatedAt: time.Now(), ParentFolder: "/"})
	if err := l.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	store2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store2.Close()

	l2 := New(store2, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	l2.Load(ctx)
	if _, ok := l2.Get("/keep"); !ok {
		t.Error("record lost across reopen")
	}
}
