package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jetlumen/go-backend/internal/domains/contracts"
)

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	snap, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("initial read: %v", err)
	}
	if snap.State != Initial() {
		t.Fatalf("expected initial state, got %+v", snap.State)
	}

	next := State{Total: "5", LastRecipient: "GDEST"}
	written, err := store.CompareAndSwap(ctx, snap.Version, next)
	if err != nil {
		t.Fatalf("first swap: %v", err)
	}
	if written.State != next || written.Version <= snap.Version {
		t.Fatalf("unexpected written snapshot %+v", written)
	}

	if _, err := store.CompareAndSwap(ctx, snap.Version, State{Total: "9"}); !errors.Is(err, contracts.ErrVersionConflict) {
		t.Fatalf("expected version conflict for stale version, got %v", err)
	}

	reread, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if reread != written {
		t.Fatalf("stale swap must not change state: got %+v want %+v", reread, written)
	}
}

func TestFileStoreContract(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "data", "state.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	runStoreContract(t, store)
}

func TestFileStoreCreatesInitialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if _, err := OpenFileStore(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "{\n  \"total\": \"0\",\n  \"lastRecipient\": \"\",\n  \"version\": 0\n}\n"
	if string(raw) != want {
		t.Fatalf("unexpected initial file:\n%s", raw)
	}
}

func TestFileStoreReadsLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	legacy := "{\n  \"total\": \"1.5\",\n  \"lastRecipient\": \"GOLD\"\n}"
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	snap, err := store.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snap.State.Total != "1.5" || snap.State.LastRecipient != "GOLD" || snap.Version != 0 {
		t.Fatalf("unexpected legacy snapshot %+v", snap)
	}
}

func TestBadgerStoreContract(t *testing.T) {
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	runStoreContract(t, store)
}

func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("JETLUMEN_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("JETLUMEN_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := OpenPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.db.ExecContext(ctx, `UPDATE jetlumen_state SET total = '0', last_recipient = '', version = 0 WHERE id = 1`); err != nil {
		t.Fatalf("reset: %v", err)
	}
	runStoreContract(t, store)
}
