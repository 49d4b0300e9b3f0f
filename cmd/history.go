package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amchen/gitfolio/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history [handle]",
	Short: "List past searches or replay a transcript",
	Long: `Without arguments, history lists all recorded searches. With a handle,
it shows the latest search for that handle: the profile snapshot, the
indexed skills, and the chat transcript.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
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

	if len(args) == 0 {
		return listHistory(c)
	}
	return showHistory(c, args[0])
}

func listHistory(c *components) error {
	searches, err := c.Store.ListSearches()
	if err != nil {
		return fmt.Errorf("listing searches: %w", err)
	}
	if len(searches) == 0 {
		fmt.Println("No searches recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHANDLE\tNAME\tREPOS\tSEARCHED")
	for _, s := range searches {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			s.ID, s.Handle, s.DisplayName, s.PublicRepos, formatTimeAgo(s.FetchedAt))
	}
	return w.Flush()
}

func showHistory(c *components, handle string) error {
	search, err := c.Store.LatestSearchByHandle(handle)
	if err != nil {
		return fmt.Errorf("no recorded search for %q", handle)
	}

	name := search.DisplayName
	if name == "" {
		name = search.Handle
	}
	fmt.Printf("%s (searched %s)\n", name, formatTimeAgo(search.FetchedAt))
	if search.Bio != "" {
		fmt.Printf("  %s\n", search.Bio)
	}
	fmt.Printf("  %d followers, %d following, %d public repos\n",
		search.Followers, search.Following, search.PublicRepos)

	kb, err := c.Store.GetKnowledge(search.ID)
	if err != nil {
		return fmt.Errorf("loading knowledge: %w", err)
	}
	if kb != nil {
		fmt.Printf("\nSkills (%s scan): %s\n", kb.Mode, strings.Join(kb.Skills, ", "))
	}

	msgs, err := c.Store.ListMessages(search.ID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}
	if len(msgs) > 0 {
		fmt.Println("\nTranscript:")
		for _, m := range msgs {
			prefix := "  you:"
			if m.Role == session.RoleBot {
				prefix = "  bot:"
			}
			fmt.Printf("%s %s\n", prefix, m.Content)
		}
	}

	return nil
}
