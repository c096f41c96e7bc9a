package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"twfold/internal/diag"
	"twfold/internal/rewrite"
	"twfold/internal/source"
	"twfold/internal/sourcemap"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores rewrite results on disk, keyed by the content hash of the
// input combined with the configuration hash. Thread-safe for concurrent
// access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedDiag is a diagnostic preserved across runs. Spans are byte offsets
// into the cached file; the FileID is rebound on replay.
type CachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
}

// DiskPayload stores one file's rewrite outcome for fast re-runs.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	// NoOp marks a file whose rewrite produced no edits.
	NoOp   bool
	Folded int

	NewText  []byte
	Segments []sourcemap.Segment

	// Diagnostics replayed on a cache hit, so warnings do not disappear
	// just because the file was seen before.
	Diags []CachedDiag
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// cacheKey derives the lookup key from a file's content hash and the
// configuration hash: a change to either invalidates the entry.
func cacheKey(fileHash, cfgHash [32]byte) [32]byte {
	h := sha256.New()
	h.Write(fileHash[:])
	h.Write(cfgHash[:])
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *DiskCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// Subdirectory "files" keeps the cache root readable and easy to clear.
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key [32]byte, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// Succeeds only when the rename below did not happen.
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key [32]byte, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// resultToPayload converts a rewrite result and its diagnostics for caching.
// A nil result is stored as a NoOp entry.
func resultToPayload(res *rewrite.Result, bag *diag.Bag) *DiskPayload {
	payload := &DiskPayload{Schema: diskCacheSchemaVersion}
	if res == nil {
		payload.NoOp = true
	} else {
		payload.Folded = res.Folded
		payload.NewText = res.Text
		payload.Segments = res.Map.Segments()
	}
	for _, d := range bag.Items() {
		payload.Diags = append(payload.Diags, CachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		})
	}
	return payload
}

// payloadToResult converts a cached payload back, replaying its diagnostics
// into bag. Returns nil for NoOp entries and for unusable payloads.
func payloadToResult(payload *DiskPayload, fileID source.FileID, bag *diag.Bag) *rewrite.Result {
	if payload == nil || payload.Schema != diskCacheSchemaVersion {
		return nil
	}
	for _, d := range payload.Diags {
		bag.Add(diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Message:  d.Message,
			Primary:  source.Span{File: fileID, Start: d.Start, End: d.End},
		})
	}
	if payload.NoOp {
		return nil
	}
	return &rewrite.Result{
		Text:   payload.NewText,
		Map:    sourcemap.FromSegments(payload.Segments),
		Folded: payload.Folded,
	}
}
