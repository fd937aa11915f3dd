package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	const key = "resumes/abc/file.pdf"
	stored, err := store.Store(ctx, key, strings.NewReader("%PDF"), 4, "application/pdf")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored != key {
		t.Fatalf("stored key = %q, want %q", stored, key)
	}

	exists, err := store.Exists(ctx, key)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("stored object does not exist")
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF" {
		t.Fatalf("content = %q", data)
	}
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := store.Open(context.Background(), "resumes/missing/file.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open missing = %v, want ErrNotFound", err)
	}

	exists, err := store.Exists(context.Background(), "resumes/missing/file.pdf")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("missing object reported as existing")
	}
}

func TestLocalStoreDeleteIdempotent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	const key = "resumes/abc/file.docx"
	if _, err := store.Store(ctx, key, strings.NewReader("doc"), 3, ""); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open deleted = %v, want ErrNotFound", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := store.Store(context.Background(), "../escape.pdf", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatal("traversal key accepted")
	}
	if _, err := store.Open(context.Background(), "/etc/passwd"); err == nil {
		t.Fatal("absolute key accepted")
	}
}
