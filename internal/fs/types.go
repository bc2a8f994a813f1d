// Package fs provides file system traversal for indexing.
package fs

import (
	"time"
)

// FileInfo represents metadata about a discovered source file.
type FileInfo struct {
	Path        string    // Absolute path to the file
	RelPath     string    // Path relative to the root
	Size        int64     // File size in bytes
	ModTime     time.Time // Last modification time
	Fingerprint string    // xxhash of file contents
	Language    string    // Detected programming language
}

// WalkOptions configures the file walker.
type WalkOptions struct {
	// Root is the directory to start walking from.
	Root string

	// MaxFileSize is the maximum file size to process (in bytes).
	MaxFileSize int64

	// MaxFileCount is the maximum number of files to process.
	MaxFileCount int

	// IgnorePatterns are additional patterns to ignore (gitignore syntax).
	IgnorePatterns []string

	// IncludeHidden includes hidden files and directories.
	IncludeHidden bool

	// UseGitignore respects .gitignore files.
	UseGitignore bool

	// SourceOnly limits the walk to recognized source code files.
	SourceOnly bool
}

// DefaultWalkOptions returns sensible defaults for walking.
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{
		MaxFileSize:  1024 * 1024, // 1MB
		MaxFileCount: 10000,
		UseGitignore: true,
		SourceOnly:   true,
	}
}

// Walker walks a directory tree and yields files.
type Walker interface {
	// Walk walks the directory tree and calls fn for each file.
	// The walk stops if fn returns an error.
	Walk(fn func(FileInfo) error) error

	// Stats returns statistics about the walk.
	Stats() WalkStats
}

// WalkStats contains statistics from a directory walk.
type WalkStats struct {
	FilesFound   int   // Total files found
	FilesSkipped int   // Files skipped due to size/pattern/etc
	DirsSkipped  int   // Directories skipped
	TotalBytes   int64 // Total bytes of files found
	SkippedBytes int64 // Total bytes of skipped files
}
