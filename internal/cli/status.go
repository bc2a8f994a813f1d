package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"codescout/internal/config"
	"codescout/internal/store"
	"codescout/internal/ui"
)

var statusVerify bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status and statistics",
	Long: `Display information about the index including:
- Indexed root and embedding model
- Number of indexed files and symbols
- Per-language breakdown
- Last synchronization time

Examples:
  # Show index status
  codescout status

  # Also cross-check symbol rows against their vectors
  codescout status --verify`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusVerify, "verify", false, "cross-check symbol rows against vectors")
}

func runStatus(cmd *cobra.Command, args []string) error {
	log.Debug("Showing status", "verify", statusVerify)

	cfg := config.Get()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Meta()
	if err != nil {
		return fmt.Errorf("failed to read index metadata: %w", err)
	}

	if meta == nil {
		fmt.Println("No index found.")
		fmt.Println()
		fmt.Println("Run 'codescout sync [path]' to create one.")
		return nil
	}

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println(ui.Header.Render("Index Status"))
	fmt.Println()

	fmt.Printf("%s %s\n",
		ui.Dim.Render("Root:"),
		meta.RootPath,
	)

	// Check if root still exists
	if _, err := os.Stat(meta.RootPath); os.IsNotExist(err) {
		fmt.Printf("%s\n", ui.Warning.Render("(root no longer exists)"))
	}

	fmt.Printf("%s %s (%s)\n",
		ui.Dim.Render("Model:"),
		meta.EmbeddingModel,
		meta.EmbeddingProvider,
	)
	fmt.Printf("%s %d\n",
		ui.Dim.Render("Dimensions:"),
		meta.EmbeddingDimensions,
	)

	fmt.Printf("%s %d files, %d symbols\n",
		ui.Dim.Render("Indexed:"),
		stats.FileCount,
		stats.UnitCount,
	)

	if len(stats.LanguageCounts) > 0 {
		fmt.Printf("%s %s\n",
			ui.Dim.Render("Languages:"),
			formatLanguages(stats.LanguageCounts),
		)
	}

	fmt.Printf("%s %s\n",
		ui.Dim.Render("Created:"),
		formatTime(meta.CreatedAt),
	)
	fmt.Printf("%s %s\n",
		ui.Dim.Render("Updated:"),
		formatTime(meta.UpdatedAt),
	)

	fmt.Printf("%s %s\n",
		ui.Dim.Render("Health:"),
		getHealthStatus(stats),
	)

	if statusVerify {
		report, err := st.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("integrity check failed: %w", err)
		}

		fmt.Println()
		fmt.Println(ui.Dim.Render("Integrity:"))
		fmt.Printf("  Symbol rows: %d\n", report.UnitRows)
		fmt.Printf("  Vector rows: %d\n", report.VectorRows)
		if report.Consistent() {
			fmt.Printf("  %s\n", ui.Success.Render("consistent (one vector per symbol)"))
		} else {
			fmt.Printf("  %s\n", ui.Error.Render(fmt.Sprintf(
				"inconsistent: %d symbols without vectors, %d orphan vectors",
				report.MissingVectors, report.OrphanVectors,
			)))
			fmt.Printf("  %s\n", ui.Dim.Render("Run 'codescout sync --force' to rebuild."))
		}
	}

	// Show config info
	fmt.Println()
	fmt.Println(ui.Dim.Render("Configuration:"))
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
	fmt.Printf("  Embedding Provider: %s\n", cfg.Embeddings.Provider)
	fmt.Printf("  Summarizer Provider: %s\n", cfg.Summarizer.Provider)

	return nil
}

// formatLanguages renders per-language symbol counts, largest first.
func formatLanguages(counts map[string]int) string {
	type langCount struct {
		lang  string
		count int
	}

	pairs := make([]langCount, 0, len(counts))
	for lang, count := range counts {
		pairs = append(pairs, langCount{lang, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].lang < pairs[j].lang
	})

	out := ""
	for i, p := range pairs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s (%d)", p.lang, p.count)
	}
	return out
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	// If today, show time only
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today at " + t.Format("15:04")
	}

	// If this year, omit year
	if t.Year() == now.Year() {
		return t.Format("Jan 2 at 15:04")
	}

	return t.Format("Jan 2, 2006 at 15:04")
}

// getHealthStatus returns a health indicator based on stats.
func getHealthStatus(stats *store.IndexStats) string {
	if stats.FileCount == 0 {
		return ui.Warning.Render("empty (no files indexed)")
	}
	if stats.UnitCount == 0 {
		return ui.Warning.Render("no symbols (re-sync may be needed)")
	}

	return ui.Success.Render("healthy")
}
