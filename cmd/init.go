package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup for gitfolio configuration",
	Long:  `Creates a default configuration file with guided prompts.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Welcome to gitfolio setup!")
	fmt.Println("This will create a configuration file for you.")
	fmt.Println()

	configPath := cfgFile
	if configPath == "" {
		configPath = defaultConfigPath()
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at %s\n", configPath)
		fmt.Print("Overwrite? [y/N]: ")
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Gather inputs
	fmt.Print("GitHub App ID for authenticated quota (or press Enter for anonymous): ")
	appID, _ := reader.ReadString('\n')
	appID = strings.TrimSpace(appID)

	keyPath := ""
	installID := ""
	if appID != "" {
		fmt.Print("GitHub App private key path: ")
		keyPath, _ = reader.ReadString('\n')
		keyPath = strings.TrimSpace(keyPath)

		fmt.Print("GitHub App installation ID: ")
		installID, _ = reader.ReadString('\n')
		installID = strings.TrimSpace(installID)
	}

	fmt.Print("Scan mode (full/shallow) [full]: ")
	mode, _ := reader.ReadString('\n')
	mode = strings.TrimSpace(mode)
	if mode == "" {
		mode = "full"
	}

	// Build config
	config := buildConfigYAML(appID, installID, keyPath, mode)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", configPath)
	fmt.Println("Edit the file to customize settings.")
	return nil
}

func buildConfigYAML(appID, installID, keyPath, mode string) string {
	var b strings.Builder

	b.WriteString("# gitfolio configuration\n")
	b.WriteString("# See documentation for all available options.\n\n")

	b.WriteString("github:\n")
	if appID != "" {
		b.WriteString("  auth: app\n")
		b.WriteString(fmt.Sprintf("  app_id: %s\n", appID))
	} else {
		b.WriteString("  auth: anonymous\n")
		b.WriteString("  # app_id: YOUR_APP_ID\n")
	}
	if installID != "" {
		b.WriteString(fmt.Sprintf("  installation_id: %s\n", installID))
	} else {
		b.WriteString("  # installation_id: YOUR_INSTALLATION_ID\n")
	}
	if keyPath != "" {
		b.WriteString(fmt.Sprintf("  private_key_path: %s\n", keyPath))
	} else {
		b.WriteString("  # private_key_path: /path/to/private-key.pem\n")
	}
	b.WriteString("\n")

	b.WriteString("scan:\n")
	b.WriteString(fmt.Sprintf("  mode: %s\n", mode))
	b.WriteString("\n")

	b.WriteString("defaults:\n")
	b.WriteString("  quota_poll_interval: 60s\n")
	b.WriteString("  request_timeout: 30s\n")
	b.WriteString("  cache_ttl: 15m\n")
	b.WriteString("\n")

	b.WriteString("store:\n")
	b.WriteString("  path: ~/.gitfolio/gitfolio.db\n")

	return b.String()
}
