package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry not removed from disk")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
}

func TestFileCacheUsageAndClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte("data"), 0); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files in the root are left alone.
	keep := filepath.Join(dir, "README")
	if err := os.WriteFile(keep, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, size, err := c.Usage()
	if err != nil {
		t.Fatal(err)
	}
	if entries != 3 || size == 0 {
		t.Errorf("Usage() = %d entries, %d bytes", entries, size)
	}

	removed, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Errorf("Clear() removed %d, want 3", removed)
	}
	if entries, _, _ := c.Usage(); entries != 0 {
		t.Errorf("entries after Clear = %d", entries)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("Clear removed an unrelated file")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("none backend = %T", c)
	}

	dir := t.TempDir()
	c, err = Open(ctx, Options{Backend: BackendFile, Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("file backend = %T", c)
	}

	_, err = Open(ctx, Options{Backend: "memcached"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend: err = %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("AUGC"))
	if h1 != Hash([]byte("AUGC")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("AUGG")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := LayoutKeyOpts{Mode: "force_directed", MaxIterations: 200, Tolerance: 1e-4, Seed: 42}
	lk := k.LayoutKey("abc", base)
	if !strings.HasPrefix(lk, "layout:") {
		t.Errorf("LayoutKey = %q", lk)
	}
	if lk != k.LayoutKey("abc", base) {
		t.Error("LayoutKey not deterministic")
	}
	other := base
	other.Seed = 7
	if lk == k.LayoutKey("abc", other) {
		t.Error("seed does not affect LayoutKey")
	}
	if lk == k.LayoutKey("abd", base) {
		t.Error("structure hash does not affect LayoutKey")
	}

	svg := k.ArtifactKey("def", ArtifactKeyOpts{Format: "svg", Width: 800, Height: 600})
	png := k.ArtifactKey("def", ArtifactKeyOpts{Format: "png", Width: 800, Height: 600})
	if svg == png {
		t.Error("format does not affect ArtifactKey")
	}
	if !strings.HasPrefix(svg, "artifact:svg:") {
		t.Errorf("ArtifactKey = %q", svg)
	}
	legend := k.ArtifactKey("def", ArtifactKeyOpts{Format: "svg", Width: 800, Height: 600, Legend: true})
	if legend == svg {
		t.Error("legend does not affect ArtifactKey")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "v1.2.0:")

	opts := LayoutKeyOpts{Mode: "circular"}
	if got, want := scoped.LayoutKey("h", opts), "v1.2.0:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey = %q, want %q", got, want)
	}
	aopts := ArtifactKeyOpts{Format: "json"}
	if got, want := scoped.ArtifactKey("h", aopts), "v1.2.0:"+inner.ArtifactKey("h", aopts); got != want {
		t.Errorf("ArtifactKey = %q, want %q", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	opts := LayoutKeyOpts{Mode: "circular"}
	if got := scoped.LayoutKey("h", opts); got != "p:"+NewDefaultKeyer().LayoutKey("h", opts) {
		t.Errorf("unexpected key with nil inner: %s", got)
	}
}
