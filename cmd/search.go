package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amchen/gitfolio/internal/github"
	"github.com/amchen/gitfolio/internal/knowledge"
)

var searchMode string

var searchCmd = &cobra.Command{
	Use:   "search <handle>",
	Short: "Fetch a user's profile and build their knowledge base",
	Long: `Search fetches a GitHub user's public profile and repositories, builds a
keyword index from repo metadata and readmes, and stores the result for
later browsing and chat.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "scan mode: full or shallow (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	handle := args[0]

	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c, err := initComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Store.Close()

	mode, err := scanMode(cfg, searchMode)
	if err != nil {
		return err
	}

	ctx := context.Background()

	fmt.Fprintf(os.Stderr, "Fetching profile for %s...\n", handle)
	profile, err := c.Fetcher.Profile(ctx, handle)
	if err != nil {
		return describeFetchError(handle, err)
	}

	repos, err := c.Fetcher.Repos(ctx, handle)
	if err != nil {
		return describeFetchError(handle, err)
	}
	fmt.Fprintf(os.Stderr, "Found %d public repositories\n", len(repos))

	candidates := knowledge.SelectCandidates(repos, mode)
	bar := newProgressBar(len(candidates), "Indexing readmes", os.Stderr)
	kb, err := c.Builder.BuildWithProgress(ctx, handle, repos, mode, func() {
		bar.Add(1)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr)
		return describeFetchError(handle, err)
	}
	bar.Finish()

	search, err := persistSearch(c.Store, profile, repos, kb)
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}

	name := profile.Name
	if name == "" {
		name = profile.Handle
	}
	fmt.Printf("\nSearch complete for %s\n", name)
	fmt.Printf("  Public repos:   %d\n", profile.PublicRepos)
	fmt.Printf("  Repos indexed:  %d\n", len(kb.Repos))
	fmt.Printf("  Skills found:   %d\n", len(kb.Skills))
	fmt.Printf("  Scan mode:      %s\n", kb.Mode)
	fmt.Printf("\nSaved as search #%d. Run 'gitfolio chat %s' to ask questions.\n", search.ID, handle)

	return nil
}

// describeFetchError translates the fetch error taxonomy into actionable
// CLI messages.
func describeFetchError(handle string, err error) error {
	var rl *github.RateLimitedError
	switch {
	case errors.Is(err, github.ErrNotFound):
		return fmt.Errorf("user %q not found on GitHub", handle)
	case errors.As(err, &rl):
		return fmt.Errorf("GitHub API quota exhausted; retry in %s",
			github.FormatCountdown(time.Until(rl.ResetAt)))
	default:
		return fmt.Errorf("fetching %s: %w", handle, err)
	}
}
