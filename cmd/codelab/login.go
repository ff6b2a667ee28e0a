package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codelab/internal/auth"
	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

func newLoginCommand() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for the configured backend",
		Long: "Store an access token for the configured backend. The token is\n" +
			"issued by the lesson platform's web login; paste it here once and\n" +
			"every other command picks it up.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			token := tokenFlag
			if token == "" {
				fmt.Fprintf(os.Stderr, "token for %s: ", cfg.Backend.BaseURL)
				scanner := bufio.NewScanner(os.Stdin)
				if !scanner.Scan() {
					return fmt.Errorf("no token provided")
				}
				token = strings.TrimSpace(scanner.Text())
			}

			info, err := auth.Inspect(token)
			if err != nil {
				return fmt.Errorf("refusing to store token: %w", err)
			}

			ctx := context.Background()
			if err := st.SetToken(ctx, cfg.Backend.BaseURL, token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			fmt.Printf("logged in as %s\n", info.Subject)
			if !info.ExpiresAt.IsZero() {
				fmt.Printf("token expires %s\n", info.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "access token (prompted when omitted)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetToken(context.Background(), cfg.Backend.BaseURL, ""); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			token, err := resolveToken(ctx, st, cfg)
			if err != nil {
				if errors.Is(err, interfaces.ErrLoginRequired) {
					fmt.Println("not logged in")
					return nil
				}
				return err
			}

			info, err := auth.Inspect(token)
			if err != nil {
				return err
			}
			fmt.Printf("%s @ %s\n", info.Subject, cfg.Backend.BaseURL)
			return nil
		},
	}
}

func newStyleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style [socratic|direct|encouraging]",
		Short: "Show or set the tutoring style used for AI hints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			if len(args) == 0 {
				style, err := st.TutorStyle(ctx)
				if err != nil {
					style = types.StyleSocratic
				}
				fmt.Println(style)
				return nil
			}

			style := types.TutorStyle(args[0])
			if !style.Valid() {
				return fmt.Errorf("%w: %q", types.ErrInvalidStyle, args[0])
			}
			if err := st.SetTutorStyle(ctx, style); err != nil {
				return fmt.Errorf("failed to store style: %w", err)
			}
			fmt.Printf("hints will use the %s style\n", style)
			return nil
		},
	}
	return cmd
}
