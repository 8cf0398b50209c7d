package cli

import (
	"fmt"
	"strings"

	"family-finance-go/internal/auth"
	"family-finance-go/internal/config"
	"family-finance-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	UserID string
	Email  string
	Name   string
}

// NewTokenCommand issues a bearer token signed with AUTH_JWT_SECRET, for
// local development and scripted clients.
func NewTokenCommand(log logger.Logger) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			token, err := issueToken(cfg.Auth, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "user id (uuid)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "user email")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func issueToken(cfg config.AuthConfig, opts *tokenOptions) (string, error) {
	userID := strings.TrimSpace(opts.UserID)
	if _, err := uuid.Parse(userID); err != nil {
		return "", fmt.Errorf("invalid --user-id %q: %w", opts.UserID, err)
	}
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("AUTH_JWT_SECRET is not set")
	}

	manager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	return manager.Generate(userID, strings.TrimSpace(opts.Email), strings.TrimSpace(opts.Name))
}
