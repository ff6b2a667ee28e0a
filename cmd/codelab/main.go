package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"codelab/internal/api"
	"codelab/internal/auth"
	"codelab/internal/config"
	"codelab/internal/store"
	"codelab/pkg/interfaces"
)

const version = "1.0.0"

var configPath string

func main() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "codelab",
		Short:   "codelab - lesson workspaces from your terminal",
		Long:    "codelab opens coding-lesson workspaces against a lesson platform:\nedit files locally, run tests, submit solutions, and share a live session\nwith a teacher.",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CODELAB_CONFIG"), "path to a JSON config file")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newWhoamiCommand())
	rootCmd.AddCommand(newStyleCommand())
	rootCmd.AddCommand(newLessonCommand())
	rootCmd.AddCommand(newCourseCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load(configPath)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path, cfg.Store.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return st, nil
}

// resolveToken prefers the stored credential for this backend origin and
// falls back to CODELAB_TOKEN. Expired or malformed tokens are treated the
// same as absent ones: the user is sent to login.
func resolveToken(ctx context.Context, st *store.Store, cfg *config.Config) (string, error) {
	token, err := st.Token(ctx, cfg.Backend.BaseURL)
	if err != nil {
		token = os.Getenv("CODELAB_TOKEN")
	}
	if token == "" {
		return "", interfaces.ErrLoginRequired
	}
	if !auth.Usable(token) {
		return "", interfaces.ErrLoginRequired
	}
	return token, nil
}

func newBackend(cfg *config.Config, token string) (*api.Client, error) {
	client, err := api.NewClient(cfg.Backend.BaseURL, token, cfg.Backend.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}
