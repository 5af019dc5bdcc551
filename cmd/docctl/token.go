package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"salesdocs/internal/domain/auth"
)

// newTokenCmd signs a bearer token with JWT_SECRET for local testing of the API.
func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET environment variable is required")
			}
			user, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			jwtCfg := auth.DefaultJWTConfig(secret)
			jwtCfg.AccessTokenTTL = ttl
			token, expiresAt, err := auth.NewJWTService(jwtCfg).IssueToken(user, email, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().String("user", "docctl", "Subject user id")
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	return cmd
}
