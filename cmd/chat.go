package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amchen/gitfolio/internal/knowledge"
	"github.com/amchen/gitfolio/internal/pubsub"
	"github.com/amchen/gitfolio/internal/session"
	"github.com/amchen/gitfolio/internal/store"
)

var chatMode string

var chatCmd = &cobra.Command{
	Use:   "chat <handle>",
	Short: "Ask questions about a user's portfolio interactively",
	Long: `Chat fetches a GitHub user's profile and repositories, builds their
knowledge base in the background, and answers questions about their
projects and skills from it.

Inside the chat:
  /mode full|shallow   switch scan mode and rebuild the index
  /search <handle>     switch to a different user
  /quit                exit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "scan mode: full or shallow (default from config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	mode, err := scanMode(cfg, chatMode)
	if err != nil {
		return err
	}

	pollInterval, err := cfg.Defaults.QuotaPollInterval()
	if err != nil {
		pollInterval = time.Minute
	}

	sessLogger := log.New(os.Stderr, "[chat] ", log.LstdFlags)
	sess := session.New(c.Fetcher, c.Builder, c.Gate, c.Broker, mode, pollInterval, sessLogger)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	go sess.Run(ctx)
	go printNotices(ctx, c.Broker)

	search, err := startSearch(ctx, sess, c.Store, args[0])
	if err != nil {
		return err
	}

	fmt.Println(`Type a question, or /quit to exit.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, newSearch, err := handleChatCommand(ctx, sess, c.Store, line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if newSearch != nil {
				search = newSearch
			}
			if done {
				break
			}
			continue
		}

		reply := sess.Ask(line)
		fmt.Println(reply.Content)

		if search != nil {
			if err := appendStoredMessage(c.Store, search.ID, session.RoleUser, line); err != nil {
				logger.Warn("failed to persist message", "error", err)
			}
			if err := appendStoredMessage(c.Store, search.ID, session.RoleBot, reply.Content); err != nil {
				logger.Warn("failed to persist message", "error", err)
			}
		}
	}

	return scanner.Err()
}

// startSearch kicks off a search and persists its snapshot. A nil search is
// returned when persistence fails; the chat still works, unrecorded.
func startSearch(ctx context.Context, sess *session.Session, db *store.DB, handle string) (*store.Search, error) {
	profile, repos, err := sess.Search(ctx, handle)
	if err != nil {
		return nil, describeFetchError(handle, err)
	}

	name := profile.Name
	if name == "" {
		name = profile.Handle
	}
	fmt.Printf("Chatting about %s (%d public repos). Building knowledge base...\n",
		name, profile.PublicRepos)

	search, err := persistSearch(db, profile, repos, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: search not recorded: %v\n", err)
		return nil, nil
	}
	return search, nil
}

// handleChatCommand dispatches slash commands. Returns done=true for /quit
// and a new search record when the target changed.
func handleChatCommand(ctx context.Context, sess *session.Session, db *store.DB, line string) (bool, *store.Search, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil, nil
	case "/mode":
		if len(fields) != 2 {
			return false, nil, fmt.Errorf("usage: /mode full|shallow")
		}
		mode := knowledge.ScanMode(fields[1])
		if !mode.Valid() {
			return false, nil, fmt.Errorf("unsupported scan mode: %q", fields[1])
		}
		sess.SetMode(ctx, mode)
		fmt.Printf("Scan mode set to %s; rebuilding knowledge base.\n", mode)
		return false, nil, nil
	case "/search":
		if len(fields) != 2 {
			return false, nil, fmt.Errorf("usage: /search <handle>")
		}
		search, err := startSearch(ctx, sess, db, fields[1])
		if err != nil {
			return false, nil, err
		}
		return false, search, nil
	default:
		return false, nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

// printNotices surfaces broker events as chat status lines. Countdown ticks
// overwrite in place; other notices get their own line.
func printNotices(ctx context.Context, broker *pubsub.Broker[string]) {
	events := broker.Subscribe(ctx)
	for evt := range events {
		switch evt.Type {
		case pubsub.KnowledgeUpdated:
			fmt.Printf("\rKnowledge base ready for %s. Ask away.\n> ", evt.Payload)
		case pubsub.RateLimited:
			fmt.Printf("\rGitHub API quota exhausted. Retry in %s.\n> ", evt.Payload)
		case pubsub.CountdownTick:
			fmt.Printf("\rQuota resets in %s ", evt.Payload)
		}
	}
}
