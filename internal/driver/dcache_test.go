package driver

import (
	"path/filepath"
	"testing"

	"twfold/internal/sourcemap"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	key := cacheKey([32]byte{1}, [32]byte{2})
	in := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Folded:  2,
		NewText: []byte(`const c = "a md:b";`),
		Segments: []sourcemap.Segment{
			{NewStart: 0, NewEnd: 10, OrigStart: 0, OrigEnd: 10},
			{NewStart: 10, NewEnd: 18, OrigStart: 10, OrigEnd: 40, Replaced: true},
		},
		Diags: []CachedDiag{{Severity: 1, Code: 2003, Message: "unknown variant", Start: 15, End: 20}},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}

	var out DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if out.Folded != in.Folded || string(out.NewText) != string(in.NewText) {
		t.Errorf("payload round trip mismatch: %+v", out)
	}
	if len(out.Segments) != 2 || !out.Segments[1].Replaced {
		t.Errorf("segments = %+v", out.Segments)
	}
	if len(out.Diags) != 1 || out.Diags[0].Code != 2003 {
		t.Errorf("diags = %+v", out.Diags)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	ok, err := cache.Get(cacheKey([32]byte{9}, [32]byte{9}), &out)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("unexpected hit on empty cache")
	}
}

func TestDiskCacheNilReceiver(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put([32]byte{}, &DiskPayload{}); err != nil {
		t.Fatal(err)
	}
	ok, err := cache.Get([32]byte{}, &DiskPayload{})
	if err != nil || ok {
		t.Fatalf("Get on nil cache = %v, %v", ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	a := cacheKey([32]byte{1}, [32]byte{2})
	b := cacheKey([32]byte{1}, [32]byte{3})
	c := cacheKey([32]byte{2}, [32]byte{2})
	if a == b || a == c {
		t.Fatal("key must depend on both hashes")
	}
}
