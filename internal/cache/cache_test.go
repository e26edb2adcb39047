package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKeyFromDeterministic(t *testing.T) {
	a := KeyFrom("model-a", "same prompt")
	b := KeyFrom("model-a", "same prompt")
	if a != b {
		t.Fatal("same inputs must produce the same key")
	}
	if a == KeyFrom("model-b", "same prompt") {
		t.Fatal("different model must produce a different key")
	}
	if len(a) != 64 {
		t.Fatalf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestLLMCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("m", "p")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("fresh cache should miss without error: ok=%v err=%v", ok, err)
	}
	if err := c.Save(ctx, key, []byte(`{"markdown":"x"}`)); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if string(got) != `{"markdown":"x"}` {
		t.Fatalf("got %q", got)
	}
}

func TestHTTPCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := &HTTPCache{Dir: t.TempDir()}
	const url = "https://example.com/page"

	if _, err := c.LoadMeta(ctx, url); err == nil {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Save(ctx, url, "text/html", `"v1"`, "Mon, 01 Jan 2024 00:00:00 GMT", []byte("<html>body</html>")); err != nil {
		t.Fatal(err)
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ETag != `"v1"` || meta.ContentType != "text/html" {
		t.Fatalf("meta = %+v", meta)
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil || string(body) != "<html>body</html>" {
		t.Fatalf("body=%q err=%v", body, err)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.json")
	newFile := filepath.Join(dir, "new.json")
	if err := os.WriteFile(oldFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newFile, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldFile, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Fatal("stale file should be gone")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatal("fresh file should survive")
	}
}

func TestPurgeByAgeZeroIsNoop(t *testing.T) {
	if n, err := PurgeByAge(t.TempDir(), 0); n != 0 || err != nil {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("dir not empty: %d entries", len(entries))
	}
	if err := ClearDir(filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("missing dir should be a no-op: %v", err)
	}
}
