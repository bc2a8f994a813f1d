package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codescout/internal/config"
	"codescout/internal/embeddings"
	"codescout/internal/summarizer"
	"codescout/internal/syncer"
	"codescout/internal/ui"
	"codescout/internal/watcher"
)

var watchNoInitial bool

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch for file changes and keep the index fresh",
	Long: `Watch a directory for file changes and re-synchronize automatically.

This command first runs a full synchronization (unless --no-initial is
specified), then watches for changes. Each batch of changes triggers a
pass; unchanged files are skipped by fingerprint so only the touched
files are summarized and embedded again.

Examples:
  # Watch current directory
  codescout watch

  # Watch a specific directory
  codescout watch ./src

  # Skip initial sync (assumes already indexed)
  codescout watch --no-initial`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatchCmd,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip initial synchronization")
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", absPath)
	}

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	summ, err := summarizer.NewService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create summarizer service: %w", err)
	}

	emb, err := embeddings.NewService(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedding service: %w", err)
	}

	s := syncer.New(st, summ, emb, cfg)

	if !watchNoInitial {
		fmt.Println(ui.Header.Render("Initial Sync"))
		fmt.Printf("Path: %s\n\n", absPath)

		report, err := s.Sync(ctx, syncer.SyncOptions{
			Root:       absPath,
			OnProgress: printProgress,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil // User cancelled
			}
			return fmt.Errorf("initial sync failed: %w", err)
		}

		fmt.Print("\r\033[2K")
		fmt.Printf("Initial sync complete: %d updated, %d unchanged, %d removed\n\n",
			report.Updated, report.Skipped, report.Removed)
	}

	w, err := watcher.New(
		absPath,
		s,
		watcher.WithDebounceTime(500*time.Millisecond),
		watcher.WithSyncCallback(func(report *syncer.Report) {
			if report.Failed > 0 {
				fmt.Printf("%s %d files failed, will retry on the next change\n",
					ui.Warning.Render("!"), report.Failed)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	fmt.Println(ui.Header.Render("Watching for Changes"))
	fmt.Printf("Directory: %s\n", absPath)
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
