package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/sleepr/internal/constants"
	"github.com/julianstephens/sleepr/internal/storage"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sleepr.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Set(constants.KeyStreak, "[3,0,0,0,0,0,4]"); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	store.Close()
	return dbPath
}

func readStreak(t *testing.T, dbPath string) string {
	t.Helper()
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load %s: %v", dbPath, err)
	}
	defer store.Close()
	v, err := store.Get(constants.KeyStreak)
	if err != nil {
		t.Fatalf("failed to read streak: %v", err)
	}
	return v
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to unexpected dir: %s", path)
	}
	if got := readStreak(t, path); got != "[3,0,0,0,0,0,4]" {
		t.Errorf("backup content mismatch: %s", got)
	}
}

func TestCreate_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "nope.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestCreate_UniqueNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 6, 3, 21, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Errorf("expected 3 backups, got %d", len(list))
	}
}

func TestList_SkipsForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	os.MkdirAll(mgr.Dir(), 0700)
	os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600)
	os.WriteFile(filepath.Join(mgr.Dir(), constants.BackupFilePrefix+"garbage"+constants.BackupFileSuffix), []byte("x"), 0600)

	list, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no backups, got %+v", list)
	}
}

func TestPrune(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)

	for i := 0; i < constants.MaxBackups+3; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		mgr.now = func() time.Time { return ts }
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}

	list, _ := mgr.List()
	if len(list) != constants.MaxBackups {
		t.Fatalf("expected %d backups after pruning, got %d", constants.MaxBackups, len(list))
	}
	if !list[len(list)-1].Timestamp.Equal(start.Add(3 * time.Hour)) {
		t.Errorf("oldest kept backup = %v", list[len(list)-1].Timestamp)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	snap, err := mgr.Create()
	if err != nil {
		t.Fatal(err)
	}

	store := storage.NewSQLiteStore(dbPath)
	store.Load()
	store.Set(constants.KeyStreak, "[0,0,0,0,0,0,0]")
	store.Close()

	mgr.now = func() time.Time { return time.Now().Add(time.Hour) }
	previous, err := mgr.Restore(snap)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := readStreak(t, dbPath); got != "[3,0,0,0,0,0,4]" {
		t.Errorf("restore did not bring data back: %s", got)
	}
	if got := readStreak(t, previous); got != "[0,0,0,0,0,0,0]" {
		t.Errorf("pre-restore snapshot has wrong data: %s", got)
	}
}

func TestRestore_InvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	bogus := filepath.Join(t.TempDir(), "bogus.db")
	os.WriteFile(bogus, []byte("definitely not sqlite"), 0600)

	if _, err := NewManager(dbPath).Restore(bogus); err == nil {
		t.Error("expected error for invalid backup")
	}
}
