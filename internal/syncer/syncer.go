// Package syncer reconciles the index with the current state of a
// directory tree: removed files are pruned, unchanged files are skipped
// by content fingerprint, and changed files get their unit cohorts
// replaced wholesale.
package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"codescout/internal/config"
	"codescout/internal/embeddings"
	"codescout/internal/fs"
	"codescout/internal/store"
	"codescout/internal/summarizer"
)

// Syncer orchestrates reconciliation between the file tree and the index.
type Syncer struct {
	store      store.Store
	summarizer summarizer.Service
	embedder   embeddings.Service
	cfg        *config.Config

	// Progress tracking
	progress Progress
	mu       sync.Mutex
}

// Progress tracks synchronization progress.
type Progress struct {
	TotalFiles     int
	ProcessedFiles int
	CurrentFile    string
	StartTime      time.Time
}

// ProgressFunc is called to report progress during synchronization.
type ProgressFunc func(Progress)

// SyncOptions configures a synchronization run.
type SyncOptions struct {
	// Root is the directory to synchronize.
	Root string

	// IgnorePatterns are additional patterns to ignore.
	IgnorePatterns []string

	// Force re-indexes files even when their fingerprints are known.
	Force bool

	// OnProgress is called to report progress.
	OnProgress ProgressFunc
}

// Report summarizes what a synchronization run did.
type Report struct {
	FilesScanned int
	Updated      int
	Skipped      int
	Failed       int
	Removed      int
	UnitsIndexed int
	Duration     time.Duration
}

// New creates a new Syncer.
func New(st store.Store, summ summarizer.Service, emb embeddings.Service, cfg *config.Config) *Syncer {
	return &Syncer{
		store:      st,
		summarizer: summ,
		embedder:   emb,
		cfg:        cfg,
	}
}

// Sync reconciles the index with the directory tree at opts.Root.
//
// Failures isolated to a single file are counted and logged but never
// abort the run; the file's previous units stay in place and the file
// is retried on the next run because its fingerprint was never recorded.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (*Report, error) {
	absRoot, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("root does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	// Record or validate index metadata before touching any rows
	_, err = s.store.EnsureMeta(
		absRoot,
		store.EmbeddingProvider(string(s.embedder.Provider())),
		s.embedder.ModelName(),
		s.embedder.Dimensions(),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.progress = Progress{StartTime: time.Now()}
	s.mu.Unlock()

	report := &Report{}

	// Discover the current file set
	walker, err := fs.NewFileWalker(fs.WalkOptions{
		Root:           absRoot,
		MaxFileSize:    int64(s.cfg.Indexing.MaxFileSize),
		MaxFileCount:   s.cfg.Indexing.MaxFileCount,
		IgnorePatterns: append(append([]string{}, s.cfg.Ignore...), opts.IgnorePatterns...),
		UseGitignore:   true,
		SourceOnly:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file walker: %w", err)
	}

	var files []fs.FileInfo
	err = walker.Walk(func(fi fs.FileInfo) error {
		files = append(files, fi)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	report.FilesScanned = len(files)

	s.mu.Lock()
	s.progress.TotalFiles = len(files)
	s.mu.Unlock()

	log.Info("Found files to synchronize", "count", len(files))

	// Prune files that no longer exist on disk
	if err := s.prune(files, report); err != nil {
		return nil, err
	}

	// Update each discovered file
	for _, fi := range files {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		s.mu.Lock()
		s.progress.CurrentFile = fi.RelPath
		s.mu.Unlock()

		s.syncFile(ctx, fi, opts, report)

		s.mu.Lock()
		s.progress.ProcessedFiles++
		if opts.OnProgress != nil {
			opts.OnProgress(s.progress)
		}
		s.mu.Unlock()
	}

	report.Duration = time.Since(s.progress.StartTime)

	log.Info("Synchronization complete",
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"removed", report.Removed,
		"duration", report.Duration.Round(time.Millisecond),
	)

	return report, nil
}

// prune deletes index entries for files missing from the current walk.
func (s *Syncer) prune(files []fs.FileInfo, report *Report) error {
	present := make(map[string]bool, len(files))
	for _, fi := range files {
		present[fi.RelPath] = true
	}

	indexed, err := s.store.ListFileIDs()
	if err != nil {
		return fmt.Errorf("failed to list indexed files: %w", err)
	}

	for _, fileID := range indexed {
		if present[fileID] {
			continue
		}
		if err := s.store.DeleteFileUnits(fileID); err != nil {
			return fmt.Errorf("failed to prune %s: %w", fileID, err)
		}
		log.Debug("Pruned deleted file", "path", fileID)
		report.Removed++
	}

	return nil
}

// syncFile brings a single file up to date. All failures are recorded on
// the report; none propagate.
func (s *Syncer) syncFile(ctx context.Context, fi fs.FileInfo, opts SyncOptions, report *Report) {
	// Fingerprint match anywhere in the index means this content has
	// already been summarized and embedded
	if !opts.Force {
		known, err := s.store.HasFingerprint(fi.Fingerprint)
		if err != nil {
			log.Warn("Failed to check fingerprint", "path", fi.RelPath, "error", err)
			report.Failed++
			return
		}
		if known {
			log.Debug("File unchanged, skipping", "path", fi.RelPath)
			report.Skipped++
			return
		}
	}

	content, err := os.ReadFile(fi.Path)
	if err != nil {
		log.Warn("Failed to read file", "path", fi.RelPath, "error", err)
		report.Failed++
		return
	}

	units, err := s.summarize(ctx, fi.RelPath, string(content), fi.Language)
	if err != nil {
		log.Warn("Failed to summarize file", "path", fi.RelPath, "error", err)
		report.Failed++
		return
	}

	units = summarizer.FilterNoise(units)

	// Embed units one at a time so a single bad unit only loses itself
	inputs := make([]store.UnitInput, 0, len(units))
	embedFailures := 0
	for _, u := range units {
		embedding, err := s.embed(ctx, u.EmbeddingText())
		if err != nil {
			log.Warn("Failed to embed unit", "path", fi.RelPath, "symbol", u.Name, "error", err)
			embedFailures++
			continue
		}
		inputs = append(inputs, store.UnitInput{
			Symbol:      u.Name,
			Line:        u.Line,
			Description: u.Description,
			Embedding:   embedding,
		})
	}

	if len(inputs) == 0 {
		if embedFailures > 0 {
			// Nothing survived embedding; leave any previous cohort intact
			// and let the next run retry
			report.Failed++
			return
		}

		// The file legitimately has no indexable units
		hadPrior, err := s.store.HasFile(fi.RelPath)
		if err != nil {
			log.Warn("Failed to check prior units", "path", fi.RelPath, "error", err)
			report.Failed++
			return
		}
		if hadPrior {
			if err := s.store.ReplaceFileUnits(fi.RelPath, fi.Fingerprint, fi.Language, nil); err != nil {
				log.Warn("Failed to clear stale units", "path", fi.RelPath, "error", err)
				report.Failed++
				return
			}
			report.Updated++
			return
		}

		log.Debug("No units extracted", "path", fi.RelPath)
		report.Skipped++
		return
	}

	if err := s.store.ReplaceFileUnits(fi.RelPath, fi.Fingerprint, fi.Language, inputs); err != nil {
		log.Warn("Failed to store units", "path", fi.RelPath, "error", err)
		report.Failed++
		return
	}

	log.Debug("Indexed file", "path", fi.RelPath, "units", len(inputs))
	report.Updated++
	report.UnitsIndexed += len(inputs)
}

// summarize calls the summarizer under its configured timeout.
func (s *Syncer) summarize(ctx context.Context, relPath, content, language string) ([]summarizer.Unit, error) {
	timeout := time.Duration(s.cfg.Summarizer.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.summarizer.Summarize(ctx, relPath, content, language)
}

// embed calls the embedder under its configured timeout.
func (s *Syncer) embed(ctx context.Context, text string) ([]float32, error) {
	timeout := time.Duration(s.cfg.Embeddings.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.embedder.Embed(ctx, text)
}

// Progress returns the current synchronization progress.
func (s *Syncer) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}
