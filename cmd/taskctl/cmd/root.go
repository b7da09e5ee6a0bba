package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskforge/backend/pkg/client"
)

var (
	serverURL   string
	sessionPath string
)

var rootCmd = &cobra.Command{
	Use:           "taskctl",
	Short:         "Command-line client for the task management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TASKFORGE_SERVER", "http://localhost:8080"), "API server base URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", defaultSessionPath(), "path of the stored session")
}

// apiClient builds a client around the session stored on disk.
func apiClient() (*client.Client, error) {
	session, err := client.LoadSessionFile(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return client.New(serverURL, session), nil
}

// saveSession persists the client's session so later invocations stay
// authenticated across the token refreshes the SDK performs.
func saveSession(c *client.Client) error {
	return client.SaveSessionFile(sessionPath, c.Session())
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskforge/session.json"
	}
	return filepath.Join(home, ".taskforge", "session.json")
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
