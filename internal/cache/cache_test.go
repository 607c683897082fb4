package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://www.yelp.com/biz/x")
	b := CacheKey("https://www.yelp.com/biz/y")

	if !strings.HasPrefix(a, "reviewlens:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if a == b {
		t.Error("expected different keys for different URLs")
	}
	if a != CacheKey("https://www.yelp.com/biz/x") {
		t.Error("expected stable key for the same URL")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("page"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "page" {
		t.Errorf("expected hit, got %q %v", v, ok)
	}
	if c.ItemCount() != 1 {
		t.Errorf("expected 1 item, got %d", c.ItemCount())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Clear()
	if c.ItemCount() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.ItemCount())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("page"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)

	key := CacheKey("https://example.com")
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss before directory exists")
	}
	if err := c.Set(key, []byte("<html></html>"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if v, ok := c.Get(key); !ok || !bytes.Equal(v, []byte("<html></html>")) {
		t.Errorf("expected hit, got %q %v", v, ok)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".cache") {
		t.Errorf("expected a single .cache file and no temp files, got %v", entries)
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing entry should not fail: %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expected expired entry file to be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("page"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// a new process sees only the disk layer
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	if v, ok := second.Get("k"); !ok || string(v) != "page" {
		t.Fatalf("expected disk hit, got %q %v", v, ok)
	}
	if v, ok := second.memory.Get("k"); !ok || string(v) != "page" {
		t.Errorf("expected disk hit promoted to memory, got %q %v", v, ok)
	}

	if err := second.Delete("k"); err != nil {
		t.Errorf("delete failed: %v", err)
	}
	if _, ok := second.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after clear")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected cache dir removed")
	}
}
