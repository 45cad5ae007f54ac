package store

import (
	"path/filepath"
	"testing"
)

type kvStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

func exerciseStore(t *testing.T, s kvStore) {
	t.Helper()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("temperatureUnit", []byte(`"metric"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("temperatureUnit", []byte(`"imperial"`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := s.Get("temperatureUnit")
	if err != nil || !ok {
		t.Fatalf("expected value, got ok=%v err=%v", ok, err)
	}
	if string(got) != `"imperial"` {
		t.Fatalf("expected overwritten value, got %s", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	in := []byte("abc")
	_ = s.Set("k", in)
	in[0] = 'x'

	out, _, _ := s.Get("k")
	if string(out) != "abc" {
		t.Fatalf("stored value changed through caller slice: %s", out)
	}
	out[1] = 'y'
	again, _, _ := s.Get("k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through returned slice: %s", again)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, s)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Values survive reopening the database.
	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get("temperatureUnit")
	if err != nil || !ok || string(got) != `"imperial"` {
		t.Fatalf("expected persisted value, got %s ok=%v err=%v", got, ok, err)
	}
}
