package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when verdictEntry format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache keeps oracle verdicts on disk, keyed by oracle name and text hash.
// It is meant for slow external oracles; errors of the cache itself are logged
// and the call falls through to the wrapped oracle.
// Thread-safe for concurrent access.
type DiskCache struct {
	next   Oracle
	name   string
	dir    string
	logger *slog.Logger

	mu  sync.RWMutex
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// verdictEntry is the on-disk record (msgpack, zstd compressed).
type verdictEntry struct {
	Schema   uint16
	Oracle   string
	Valid    bool
	Problems []Problem
	Stored   int64
}

// DefaultCacheDir returns $XDG_CACHE_HOME/faultline or ~/.cache/faultline.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "faultline"), nil
}

// OpenDiskCache wraps next with a cache in dir (DefaultCacheDir when empty).
// name separates verdicts of different oracles sharing one directory.
func OpenDiskCache(next Oracle, name, dir string, logger *slog.Logger) (*DiskCache, error) {
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DiskCache{next: next, name: name, dir: dir, logger: logger, enc: enc, dec: dec}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(src string) string {
	sum := sha256.Sum256([]byte(c.name + "\x00" + src))
	hexKey := hex.EncodeToString(sum[:])
	// подкаталог по первому байту, чтобы не раздувать одну директорию
	return filepath.Join(c.dir, "verdicts", hexKey[:2], hexKey+".mpz")
}

func (c *DiskCache) Valid(src string) (bool, error) {
	return c.ValidContext(context.Background(), src)
}

func (c *DiskCache) ValidContext(ctx context.Context, src string) (bool, error) {
	rep, err := c.CheckContext(ctx, src)
	return rep.Valid, err
}

func (c *DiskCache) Check(src string) (Report, error) {
	return c.CheckContext(context.Background(), src)
}

// CheckContext answers from disk when possible, otherwise asks the wrapped
// oracle and stores the verdict.
func (c *DiskCache) CheckContext(ctx context.Context, src string) (Report, error) {
	p := c.pathFor(src)
	if entry, ok, err := c.get(p); err != nil {
		c.logger.Warn("oracle cache read failed", "path", p, "err", err)
	} else if ok {
		return Report{Valid: entry.Valid, Problems: entry.Problems}, nil
	}

	rep, err := CheckContext(ctx, c.next, src)
	if err != nil {
		return Report{}, err
	}

	entry := &verdictEntry{
		Schema:   diskCacheSchemaVersion,
		Oracle:   c.name,
		Valid:    rep.Valid,
		Problems: rep.Problems,
		Stored:   time.Now().Unix(),
	}
	if err := c.put(p, entry); err != nil {
		c.logger.Warn("oracle cache write failed", "path", p, "err", err)
	}
	return rep, nil
}

func (c *DiskCache) put(p string, entry *verdictEntry) error {
	raw, err := msgpack.Marshal(entry)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(c.enc.EncodeAll(raw, nil)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

func (c *DiskCache) get(p string) (*verdictEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", p, err)
	}
	var entry verdictEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != diskCacheSchemaVersion || entry.Oracle != c.name {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll removes every cached verdict.
func (c *DiskCache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "verdicts"))
}

// Close releases the compressor.
func (c *DiskCache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}
