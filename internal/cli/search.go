package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"codescout/internal/config"
	"codescout/internal/search"
	"codescout/internal/ui"
)

var (
	searchContent  bool
	searchLimit    int
	searchMinScore float64
	searchContext  int
	searchJSON     bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed symbols using semantic similarity",
	Long: `Search for symbols using natural language queries.

Each indexed symbol carries an LLM-written description; the search
matches your query against those descriptions by vector similarity,
so "where are passwords checked" finds validateCredentials even
though no words overlap.

Examples:
  # Basic search
  codescout search "where is the session token validated"

  # Show source snippets under each hit
  codescout search "retry logic" -c

  # Limit results
  codescout search "api endpoints" -m 5

  # Filter by minimum similarity score
  codescout search "error handling" --min-score 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchCmd,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchContent, "content", "c", false, "show source snippets in results")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "m", 0, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0.0, "minimum similarity score (0-1)")
	searchCmd.Flags().IntVar(&searchContext, "context", 4, "snippet lines to show with --content")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := args[0]

	log.Debug("Starting search", "query", query, "limit", searchLimit)

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
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

	emb, err := newEmbedder(st, cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedding service: %w", err)
	}

	searcher := search.New(st, emb)

	opts := search.DefaultOptions()
	if searchLimit > 0 {
		opts.TopK = searchLimit
	}
	opts.MinScore = searchMinScore

	results, err := searcher.Search(ctx, query, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found. Run 'codescout sync' to build the index.")
		return nil
	}

	displayResults(searcher, results)
	return nil
}

// displayResults formats and displays search results.
func displayResults(searcher *search.Searcher, results []search.Result) {
	fmt.Printf("Found %d results:\n\n", len(results))

	for i, r := range results {
		fmt.Printf("%s %s %s %s\n",
			ui.Highlight.Render(fmt.Sprintf("[%d]", i+1)),
			ui.Symbol.Render(r.Symbol),
			ui.FormatLocation(r.FileID, r.Line),
			ui.FormatScore(r.Score),
		)
		fmt.Printf("    %s\n", r.Description)

		if searchContent {
			if snippet := searcher.Snippet(r, searchContext); snippet != "" {
				fmt.Println()
				displaySnippet(snippet, r.Line, r.FileID)
			}
		}

		fmt.Println()
	}
}

// displaySnippet prints a source snippet with syntax highlighting.
func displaySnippet(snippet string, startLine int, filename string) {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, snippet)
	if err != nil {
		displayPlainLines(snippet, startLine)
		return
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		displayPlainLines(snippet, startLine)
		return
	}

	highlighted := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range highlighted {
		fmt.Printf("    %s %s\n",
			ui.LineNum.Render(fmt.Sprintf("%4d│", startLine+i)),
			line,
		)
	}
}

// displayPlainLines displays a snippet without highlighting (fallback).
func displayPlainLines(snippet string, startLine int) {
	for i, line := range strings.Split(snippet, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		fmt.Printf("    %s %s\n",
			ui.LineNum.Render(fmt.Sprintf("%4d│", startLine+i)),
			line,
		)
	}
}

// outputJSON outputs results as JSON.
func outputJSON(results []search.Result) error {
	if results == nil {
		results = []search.Result{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
