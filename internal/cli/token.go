package cli

import (
	"fmt"
	"time"

	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewTokenCommand mints a bearer token for local testing.
func NewTokenCommand(root *RootOptions) *cobra.Command {
	var (
		user       string
		role       string
		department string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			switch role {
			case models.RoleAdmin, models.RoleManager, models.RoleMember:
			default:
				return fmt.Errorf("invalid --role %q: must be ADMIN, MANAGER or MEMBER", role)
			}
			var deptID *uuid.UUID
			if department != "" {
				id, err := uuid.Parse(department)
				if err != nil {
					return fmt.Errorf("invalid --department: %w", err)
				}
				deptID = &id
			}

			middleware.Secret = loadConfig(root).JWTSecret
			token, err := middleware.GenerateToken(userID, role, deptID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID")
	cmd.Flags().StringVar(&role, "role", models.RoleMember, "ADMIN, MANAGER or MEMBER")
	cmd.Flags().StringVar(&department, "department", "", "department ID")
	cmd.Flags().DurationVar(&ttl, "ttl", 7*24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
