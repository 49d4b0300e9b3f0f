package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	gogithub "github.com/google/go-github/v60/github"

	"github.com/amchen/gitfolio/internal/config"
	"github.com/amchen/gitfolio/internal/github"
	"github.com/amchen/gitfolio/internal/knowledge"
	"github.com/amchen/gitfolio/internal/pubsub"
	"github.com/amchen/gitfolio/internal/store"
)

var (
	cfgFile string
	verbose bool
	noCache bool
)

var rootCmd = &cobra.Command{
	Use:   "gitfolio",
	Short: "Explore a GitHub user's portfolio through a chat interface",
	Long: `Gitfolio fetches a GitHub user's public profile and repositories, builds
a keyword index of their skills and projects, and answers questions about
them from that index. Searches and transcripts are kept locally.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default %s)", defaultConfigPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the fetch cache")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitfolio/config.yaml"
	}
	return home + "/.gitfolio/config.yaml"
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = defaultConfigPath()
	}
	return config.Load(path)
}

// components holds initialized components for use by subcommands.
type components struct {
	Config  *config.Config
	Store   *store.DB
	Client  *gogithub.Client
	Gate    *github.Gate
	Fetcher *github.Fetcher
	Builder *knowledge.Builder
	Broker  *pubsub.Broker[string]
	Logger  *slog.Logger
}

// initComponents creates all components from config.
func initComponents(cfg *config.Config, logger *slog.Logger) (*components, error) {
	c := &components{
		Config: cfg,
		Logger: logger,
	}

	// Open store
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	c.Store = db

	timeout, err := cfg.Defaults.RequestTimeout()
	if err != nil {
		timeout = 30 * time.Second
	}

	// Create GitHub client. Anonymous works against the public API at the
	// unauthenticated quota; app auth raises the ceiling.
	switch cfg.GitHub.Auth {
	case "app":
		appID, err := strconv.ParseInt(cfg.GitHub.AppID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing app_id: %w", err)
		}
		installID, err := strconv.ParseInt(cfg.GitHub.InstallationID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing installation_id: %w", err)
		}
		client, err := github.NewAppClient(appID, installID, []byte(cfg.GitHub.PrivateKey), cfg.GitHub.PrivateKeyPath, timeout)
		if err != nil {
			return nil, fmt.Errorf("creating GitHub client: %w", err)
		}
		c.Client = client
	default:
		c.Client = github.NewClient(timeout)
	}

	cacheTTL, err := cfg.Defaults.CacheTTL()
	if err != nil {
		cacheTTL = 15 * time.Minute
	}
	if noCache {
		cacheTTL = 0
	}

	c.Gate = github.NewGate()
	c.Fetcher = github.NewFetcher(c.Client, c.Gate, cacheTTL, logger)
	c.Builder = knowledge.NewBuilder(c.Fetcher)
	c.Broker = pubsub.NewBroker[string]()

	return c, nil
}

// scanMode resolves the effective scan mode from a flag override and config.
func scanMode(cfg *config.Config, flagValue string) (knowledge.ScanMode, error) {
	raw := flagValue
	if raw == "" {
		raw = cfg.Scan.Mode
	}
	mode := knowledge.ScanMode(raw)
	if !mode.Valid() {
		return "", fmt.Errorf("unsupported scan mode: %q", raw)
	}
	return mode, nil
}
