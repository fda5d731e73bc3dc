package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// ManifestFile is the name of the file, in the output root, that records
// the artifacts of the last run.
const ManifestFile = ".trpcgen-manifest"

const manifestVersion = 1

// Manifest lists the artifacts written by a run.
type Manifest struct {
	Version int      `msgpack:"version"`
	Files   []string `msgpack:"files"`
}

// Writer writes artifact sets to an output directory. Files whose
// content did not change are left untouched, and artifacts of the
// previous run that are no longer generated are removed. Files that
// were never generated are never touched.
type Writer struct {
	outDir  string
	workers int
	log     logrus.FieldLogger

	// Metrics for the last Write call.
	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks what a write did.
type WriterMetrics struct {
	FilesWritten   int
	FilesUnchanged int
	FilesRemoved   int
	TotalBytes     int64
}

// NewWriter creates a writer for the output directory.
func NewWriter(outDir string) *Writer {
	return &Writer{
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
		log:     logrus.StandardLogger(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithLogger sets the logger.
func (w *Writer) WithLogger(l logrus.FieldLogger) *Writer {
	if l != nil {
		w.log = l
	}
	return w
}

// Metrics returns a copy of the metrics of the last write.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// Write writes the artifacts in parallel, removes stale artifacts and
// records the new manifest.
func (w *Writer) Write(ctx context.Context, set *ArtifactSet) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("write", w.outDir, "create output directory", err)
	}
	prev, err := w.ReadManifest()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.metrics = &WriterMetrics{}
	w.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, a := range set.Artifacts {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(a)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	next := &Manifest{Version: manifestVersion, Files: set.Paths()}
	slices.Sort(next.Files)
	if err := w.removeStale(prev, next); err != nil {
		return err
	}
	return w.writeManifest(next)
}

// writeFile writes one artifact unless the file already has its content.
func (w *Writer) writeFile(a *Artifact) error {
	content := a.Content()
	fullPath := filepath.Join(w.outDir, filepath.FromSlash(a.Path))
	if existing, err := os.ReadFile(fullPath); err == nil && bytes.Equal(existing, content) {
		w.mu.Lock()
		w.metrics.FilesUnchanged++
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError("write", a.Path, "create directory", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return NewGenerationError("write", a.Path, "write file", err)
	}
	w.log.WithField("file", a.Path).Debug("wrote artifact")

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(content))
	w.mu.Unlock()
	return nil
}

// removeStale removes the files of the previous manifest that the next
// one does not list.
func (w *Writer) removeStale(prev, next *Manifest) error {
	for _, p := range prev.Files {
		if _, ok := slices.BinarySearch(next.Files, p); ok {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			w.log.WithField("file", p).Warn("ignoring manifest entry outside the output directory")
			continue
		}
		err := os.Remove(filepath.Join(w.outDir, filepath.FromSlash(p)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return NewGenerationError("cleanup", p, "remove stale artifact", err)
		default:
			w.log.WithField("file", p).Debug("removed stale artifact")
			w.mu.Lock()
			w.metrics.FilesRemoved++
			w.mu.Unlock()
		}
	}
	return nil
}

// ReadManifest reads the manifest of the output directory. A missing
// manifest is returned empty.
func (w *Writer) ReadManifest() (*Manifest, error) {
	buf, err := os.ReadFile(filepath.Join(w.outDir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{Version: manifestVersion}, nil
	}
	if err != nil {
		return nil, NewGenerationError("manifest", ManifestFile, "read manifest", err)
	}
	m := &Manifest{}
	if err := msgpack.Unmarshal(buf, m); err != nil {
		return nil, NewGenerationError("manifest", ManifestFile, "decode manifest", err)
	}
	if m.Version != manifestVersion {
		return nil, NewGenerationError("manifest", ManifestFile, fmt.Sprintf("unsupported manifest version %d", m.Version), nil)
	}
	slices.Sort(m.Files)
	return m, nil
}

func (w *Writer) writeManifest(m *Manifest) error {
	buf, err := msgpack.Marshal(m)
	if err != nil {
		return NewGenerationError("manifest", ManifestFile, "encode manifest", err)
	}
	if err := os.WriteFile(filepath.Join(w.outDir, ManifestFile), buf, 0o644); err != nil {
		return NewGenerationError("manifest", ManifestFile, "write manifest", err)
	}
	return nil
}
