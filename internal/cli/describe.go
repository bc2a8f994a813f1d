package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"codescout/internal/config"
	"codescout/internal/ui"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Show the indexed symbols of a file",
	Long: `Show what the index knows about a file: every symbol recorded for
it, with line numbers and the LLM-written descriptions that searches
match against.

The file argument is the path relative to the indexed root, as shown
in search results.

Examples:
  codescout describe src/auth/session.ts`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribeCmd,
}

func runDescribeCmd(cmd *cobra.Command, args []string) error {
	fileID := args[0]

	cfg := config.Get()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	units, err := st.ListFileUnits(fileID)
	if err != nil {
		return fmt.Errorf("failed to read units: %w", err)
	}

	if len(units) == 0 {
		fmt.Printf("No indexed symbols for %s\n", ui.FilePath.Render(fileID))
		fmt.Println(ui.Dim.Render("The file may be unindexed, excluded, or known under a different path."))
		return nil
	}

	// Render the unit list as markdown
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", fileID)
	for _, u := range units {
		fmt.Fprintf(&b, "- **%s** (line %d): %s\n", u.Symbol, u.Line, u.Description)
	}

	rendered, err := renderMarkdown(b.String())
	if err != nil {
		// Fallback to raw output if rendering fails
		fmt.Print(b.String())
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// renderMarkdown renders markdown content using glamour.
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
