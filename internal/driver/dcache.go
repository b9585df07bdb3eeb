package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mica/internal/diag"
	"mica/internal/project"
	"mica/internal/source"
)

// Increment when unitPayload changes shape; old entries become misses.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores per-unit analysis verdicts keyed by content digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachedDiag is a diagnostic with spans reduced to byte offsets; the file
// ID is rebound to the current run's FileSet on restore.
type cachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []cachedNote
}

type cachedNote struct {
	Message string
	Start   uint32
	End     uint32
}

// unitPayload is the serialized outcome of one analyzed unit.
type unitPayload struct {
	Schema      uint16
	ToolVersion string
	Path        string
	OK          bool
	Diags       []cachedDiag
}

func newUnitPayload(unit Unit, opts Options, ok bool, bag *diag.Bag) *unitPayload {
	items := bag.Items()
	payload := &unitPayload{
		Schema:      diskCacheSchemaVersion,
		ToolVersion: opts.ToolVersion,
		Path:        unit.Path,
		OK:          ok,
		Diags:       make([]cachedDiag, 0, len(items)),
	}
	for _, d := range items {
		cd := cachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Message: n.Msg, Start: n.Span.Start, End: n.Span.End})
		}
		payload.Diags = append(payload.Diags, cd)
	}
	return payload
}

// restore replays cached diagnostics into bag, rebinding spans to fileID.
// Returns false when the payload is from another schema generation.
func (p *unitPayload) restore(fileID source.FileID, bag *diag.Bag) bool {
	if p.Schema != diskCacheSchemaVersion {
		return false
	}
	for _, cd := range p.Diags {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: fileID, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: fileID, Start: n.Start, End: n.End},
				Msg:  n.Message,
			})
		}
		bag.Add(d)
	}
	return true
}

// OpenDiskCache initializes a disk cache at the standard user location.
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

// OpenDiskCacheAt initializes a disk cache rooted at dir (tests, CI).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// "units" subdirectory keeps the cache root readable and easy to clear.
	return filepath.Join(c.dir, "units", fmt.Sprintf("%x.mp", key[:]))
}

// Put serializes and writes a payload, replacing any previous entry
// atomically via rename.
func (c *DiskCache) Put(key project.Digest, payload *unitPayload) error {
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
	defer func() { _ = os.Remove(f.Name()) }()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload. The first result reports whether
// the key was present.
func (c *DiskCache) Get(key project.Digest, out *unitPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
