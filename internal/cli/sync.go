package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codescout/internal/config"
	"codescout/internal/embeddings"
	"codescout/internal/summarizer"
	"codescout/internal/syncer"
	"codescout/internal/ui"
)

var (
	syncForce  bool
	syncIgnore []string
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Synchronize the index with the current file tree",
	Long: `Reconcile the index with the files on disk.

Deleted files are pruned from the index, unchanged files are skipped
by content fingerprint, and new or modified files are summarized,
embedded, and stored. A failing file is logged and retried on the
next run; it never aborts the pass.

Examples:
  # Synchronize the current directory
  codescout sync

  # Synchronize a specific directory
  codescout sync ./src

  # Re-index everything regardless of fingerprints
  codescout sync --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSyncCmd,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "re-index files even if unchanged")
	syncCmd.Flags().StringSliceVar(&syncIgnore, "ignore", nil, "additional ignore patterns (gitignore syntax)")
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted")
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

	report, err := s.Sync(ctx, syncer.SyncOptions{
		Root:           path,
		IgnorePatterns: syncIgnore,
		Force:          syncForce,
		OnProgress:     printProgress,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	// Clear the progress line
	fmt.Print("\r\033[2K")

	displayReport(report)
	return nil
}

// printProgress renders a single-line progress indicator.
func printProgress(p syncer.Progress) {
	fmt.Printf("\r\033[2K%s %d/%d %s",
		ui.Dim.Render("Syncing"),
		p.ProcessedFiles, p.TotalFiles,
		ui.Dim.Render(p.CurrentFile),
	)
}

// displayReport summarizes what the run did.
func displayReport(r *syncer.Report) {
	fmt.Println(ui.Header.Render("Sync complete"))
	fmt.Printf("  %s %d files scanned in %s\n",
		ui.Dim.Render("·"), r.FilesScanned, r.Duration.Round(time.Millisecond))
	fmt.Printf("  %s %d updated (%d units)\n",
		ui.Success.Render("✓"), r.Updated, r.UnitsIndexed)
	fmt.Printf("  %s %d unchanged\n", ui.Dim.Render("·"), r.Skipped)

	if r.Removed > 0 {
		fmt.Printf("  %s %d removed\n", ui.Warning.Render("-"), r.Removed)
	}
	if r.Failed > 0 {
		fmt.Printf("  %s %d failed (will retry next run)\n", ui.Error.Render("✗"), r.Failed)
	}
}
