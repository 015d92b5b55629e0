package tokenstore_test

import (
	"testing"

	"streamvault/internal/tokenstore"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := tokenstore.Open(dir)
	if err != nil {
		t.Fatalf("expected store, got error: %v", err)
	}
	defer store.Close()

	if _, found, err := store.Load("token"); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.Save("token", "abc123"); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	value, found, err := store.Load("token")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if !found || value != "abc123" {
		t.Fatalf("expected abc123, got %q found=%v", value, found)
	}

	if err := store.Clear("token"); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if _, found, _ := store.Load("token"); found {
		t.Fatal("expected token to be cleared")
	}

	// Clearing again must be a no-op.
	if err := store.Clear("token"); err != nil {
		t.Fatalf("second clear returned error: %v", err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := tokenstore.Open(dir)
	if err != nil {
		t.Fatalf("expected store, got error: %v", err)
	}
	if err := store.Save("token", "persist-me"); err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close returned error: %v", err)
	}

	reopened, err := tokenstore.Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	value, found, err := reopened.Load("token")
	if err != nil {
		t.Fatalf("load after reopen returned error: %v", err)
	}
	if !found || value != "persist-me" {
		t.Fatalf("expected persisted token, got %q found=%v", value, found)
	}
}
