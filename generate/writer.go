package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Writer performs atomic, containment-checked writes under one output
// directory: render to a temp file in the same directory, optionally
// fsync, then rename over the final path. Built on afero so the same code
// path runs against an in-memory filesystem in tests and a real one in
// production (teacher's domain-dependency pairing of afero alongside
// gojq).
type Writer struct {
	fs        afero.Fs
	outputDir string
	force     bool
	sync      bool

	mu sync.Mutex // serializes writes so path collisions are detected
}

// NewWriter builds a Writer rooted at outputDir. force allows overwriting
// existing files; sync calls File.Sync() after every write.
func NewWriter(fs afero.Fs, outputDir string, force, sync bool) *Writer {
	return &Writer{fs: fs, outputDir: outputDir, force: force, sync: sync}
}

// WriteResult carries the byte count and content hash of a completed write,
// used to populate a ManifestEntry.
type WriteResult struct {
	Path   string
	Bytes  int
	SHA256 string
}

// Write resolves rel against the output directory, checks containment,
// refuses to clobber an existing file unless force is set, and performs
// the write atomically. Concurrent calls are serialized, so when two
// renders target the same path the second gets a FileExistsError.
func (w *Writer) Write(rel string, content []byte) (WriteResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := w.resolve(rel)
	if err != nil {
		return WriteResult{}, err
	}

	if !w.force {
		if exists, _ := afero.Exists(w.fs, abs); exists {
			return WriteResult{}, &FileExistsError{Path: abs}
		}
	}

	dir := filepath.Dir(abs)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return WriteResult{}, &IOError{Path: abs, Cause: err}
	}

	tmp, err := afero.TempFile(w.fs, dir, ".weaver-tmp-*")
	if err != nil {
		return WriteResult{}, &IOError{Path: abs, Cause: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		w.fs.Remove(tmpName)
		return WriteResult{}, &IOError{Path: abs, Cause: err}
	}
	if w.sync {
		if syncer, ok := tmp.(interface{ Sync() error }); ok {
			if err := syncer.Sync(); err != nil {
				tmp.Close()
				w.fs.Remove(tmpName)
				return WriteResult{}, &IOError{Path: abs, Cause: err}
			}
		}
	}
	if err := tmp.Close(); err != nil {
		w.fs.Remove(tmpName)
		return WriteResult{}, &IOError{Path: abs, Cause: err}
	}
	if err := w.fs.Rename(tmpName, abs); err != nil {
		w.fs.Remove(tmpName)
		return WriteResult{}, &IOError{Path: abs, Cause: err}
	}

	sum := sha256.Sum256(content)
	return WriteResult{
		Path:   abs,
		Bytes:  len(content),
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}

// resolve joins rel onto the output directory and rejects any path that
// escapes it via "..".
func (w *Writer) resolve(rel string) (string, error) {
	if rel == "" {
		return "", &PathEscapeError{OutputDir: w.outputDir, Path: rel}
	}
	abs := filepath.Join(w.outputDir, rel)
	cleanRoot := filepath.Clean(w.outputDir)
	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", &PathEscapeError{OutputDir: w.outputDir, Path: rel}
	}
	return abs, nil
}

// ReadAll is a small afero convenience wrapper used by tests and by the
// artifact validator to read generated output back.
func ReadAll(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
