package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show quota and store overview",
	Long: `Display the current GitHub API quota, recorded searches with their repo,
skill and message counts, and the database size.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	// The quota endpoint does not consume quota itself.
	quota, err := c.Fetcher.PollRateLimit(context.Background())
	if err != nil {
		fmt.Printf("Quota: unavailable (%v)\n", err)
	} else if quota.Remaining == 0 {
		fmt.Printf("Quota: exhausted, resets in %s\n", c.Gate.Countdown(time.Now()))
	} else {
		fmt.Printf("Quota: %d/%d remaining, resets %s\n",
			quota.Remaining, quota.Limit, formatTimeAgo(quota.Reset))
	}
	fmt.Println()

	allStats, err := c.Store.GetAllSearchStats()
	if err != nil {
		return fmt.Errorf("querying stats: %w", err)
	}

	if len(allStats) == 0 {
		fmt.Println("No searches recorded yet.")
		fmt.Println("Run 'gitfolio search <handle>' or 'gitfolio chat <handle>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HANDLE\tREPOS\tSKILLS\tMESSAGES\tSEARCHED")
	fmt.Fprintln(w, "------\t-----\t------\t--------\t--------")

	for _, s := range allStats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			s.Search.Handle, s.RepoCount, s.SkillCount, s.MessageCount,
			formatTimeAgo(s.Search.FetchedAt))
	}
	w.Flush()

	// Print database file size
	fmt.Println()
	dbSize, err := dbFileSize(cfg.Store.Path)
	if err != nil {
		fmt.Printf("Database: %s (size unknown)\n", cfg.Store.Path)
	} else {
		fmt.Printf("Database: %s (%s)\n", cfg.Store.Path, formatBytes(dbSize))
	}

	return nil
}

// formatTimeAgo formats a time as a human-readable relative string. Future
// times read as "in ...".
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		return "in " + formatDurationShort(-d)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatDurationShort(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatBytes formats bytes into a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// dbFileSize returns the size in bytes of the database file.
func dbFileSize(path string) (int64, error) {
	// Expand ~ in path
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return 0, err
		}
		path = home + path[1:]
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
