package cache

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

func sampleResult(file string) *extractor.Result {
	return &extractor.Result{
		File: file,
		Records: []extractor.UsageRecord{
			{Specifier: "lodash", Kind: extractor.StaticImport, File: file},
		},
	}
}

func TestCache_MemoryOnly(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("fp1"); ok {
		t.Error("expected miss on empty cache")
	}
	if err := c.Put("fp1", sampleResult("a.js")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	res, ok := c.Get("fp1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if len(res.Records) != 1 || res.Records[0].Specifier != "lodash" {
		t.Errorf("unexpected cached result: %+v", res)
	}
}

func TestCache_Persistent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	c1, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c1.Put("fp1", sampleResult("a.js")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A second cache over the same db sees the entry.
	c2, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c2.Close()

	res, ok := c2.Get("fp1")
	if !ok {
		t.Fatal("expected persistent hit across cache instances")
	}
	if res.File != "a.js" {
		t.Errorf("unexpected file %s", res.File)
	}
}

func TestStore_IdempotentPut(t *testing.T) {
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()

	res := sampleResult("a.js")
	if err := s.Put("fp1", res); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	// Same fingerprint, same content: must be a no-op, not an error.
	if err := s.Put("fp1", res); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := s.Get("fp1")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.Records[0].Kind != extractor.StaticImport {
		t.Errorf("unexpected record kind %s", got.Records[0].Kind)
	}
}

func TestStore_CorruptRowHealsOnPut(t *testing.T) {
	s, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()

	_, err = s.db.Exec(
		`INSERT INTO extractions (fingerprint, result, created_at) VALUES (?, ?, ?)`,
		"fp1", "{not json", "2026-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("seeding corrupt row failed: %v", err)
	}

	if _, ok, err := s.Get("fp1"); ok || err != nil {
		t.Fatalf("corrupt row must read as a miss: ok=%v err=%v", ok, err)
	}

	// Re-parsing the file writes the result back over the corrupt row.
	if err := s.Put("fp1", sampleResult("a.js")); err != nil {
		t.Fatalf("Put over corrupt row failed: %v", err)
	}
	got, ok, err := s.Get("fp1")
	if err != nil || !ok {
		t.Fatalf("expected hit after rewrite: ok=%v err=%v", ok, err)
	}
	if got.File != "a.js" {
		t.Errorf("unexpected file %s", got.File)
	}
}

func TestCache_ConcurrentReads(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if err := c.Put("fp1", sampleResult("a.js")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := c.Get("fp1"); !ok {
					t.Error("expected hit")
					return
				}
			}
		}()
	}
	wg.Wait()
}
