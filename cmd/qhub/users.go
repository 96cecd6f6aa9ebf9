// AngelaMos | 2026
// users.go

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/qhub-dev/qhub/internal/core"
	"github.com/qhub-dev/qhub/internal/user"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and administer accounts",
}

var usersShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show an account",
	Args:  cobra.ExactArgs(1),
	RunE: userAction(func(ctx context.Context, svc *user.Service, args []string) (*user.User, error) {
		return svc.Lookup(ctx, args[0])
	}),
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <email>",
	Short: "Block an account from logging in",
	Args:  cobra.ExactArgs(1),
	RunE: userAction(func(ctx context.Context, svc *user.Service, args []string) (*user.User, error) {
		return svc.Deactivate(ctx, args[0])
	}),
}

var usersActivateCmd = &cobra.Command{
	Use:   "activate <email>",
	Short: "Re-enable a deactivated account",
	Args:  cobra.ExactArgs(1),
	RunE: userAction(func(ctx context.Context, svc *user.Service, args []string) (*user.User, error) {
		return svc.Activate(ctx, args[0])
	}),
}

var usersSetTierCmd = &cobra.Command{
	Use:   "set-tier <email> <free|pro|enterprise>",
	Short: "Change an account's subscription tier",
	Args:  cobra.ExactArgs(2),
	RunE: userAction(func(ctx context.Context, svc *user.Service, args []string) (*user.User, error) {
		return svc.SetTier(ctx, args[0], args[1])
	}),
}

func init() {
	usersCmd.AddCommand(usersShowCmd, usersDeactivateCmd, usersActivateCmd, usersSetTierCmd)
}

type userOp func(context.Context, *user.Service, []string) (*user.User, error)

func userAction(op userOp) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, db *core.Database) error {
			u, err := op(ctx, user.NewService(user.NewRepository(db)), args)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		})
	}
}

func printUser(w io.Writer, u *user.User) {
	fmt.Fprintf(w, "id:      %s\n", u.ID)
	fmt.Fprintf(w, "email:   %s\n", u.Email)
	fmt.Fprintf(w, "tier:    %s\n", u.Tier)
	fmt.Fprintf(w, "active:  %t\n", u.IsActive)
	if u.LastLoginAt != nil {
		fmt.Fprintf(w, "last login: %s\n", u.LastLoginAt.Format("2006-01-02 15:04:05 MST"))
	}
}
