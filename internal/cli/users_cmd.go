package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locallibrary/locallibrary/internal/auth"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
)

// DefaultRole is granted when --role is omitted.
const DefaultRole = "librarian"

func newUsersCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff roles",
	}
	cmd.AddCommand(newRoleChangeCmd(backend, "grant", "Grant a role to a user", true))
	cmd.AddCommand(newRoleChangeCmd(backend, "revoke", "Revoke a role from a user", false))
	cmd.AddCommand(newPermsCmd(backend))
	cmd.AddCommand(newPermissionsCmd(backend))
	return cmd
}

func newRoleChangeCmd(backend Backend, use, short string, grant bool) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   use + " EMAIL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, roles, err := lookupUser(ctx, backend, args[0])
			if err != nil {
				return err
			}
			r, err := roles.GetRoleByName(ctx, role)
			if err != nil {
				if errors.Is(err, rbac.ErrNotFound) {
					return fmt.Errorf("role %q does not exist", role)
				}
				return err
			}
			if grant {
				err = roles.AssignRole(ctx, user.ID, r.ID)
			} else {
				err = roles.RemoveRole(ctx, user.ID, r.ID)
			}
			if err != nil {
				return fmt.Errorf("%s role: %w", use, err)
			}
			verb := "Granted"
			if !grant {
				verb = "Revoked"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s\n", verb, r.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", DefaultRole, "Role name")
	return cmd
}

func newPermsCmd(backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "perms EMAIL",
		Short: "List the effective permissions of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, roles, err := lookupUser(ctx, backend, args[0])
			if err != nil {
				return err
			}
			perms, err := roles.EffectivePermissions(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(perms) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s has no permissions\n", user.Email)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(perms, "\n"))
			return nil
		},
	}
}

func newPermissionsCmd(backend Backend) *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "List every known permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roles, err := backend.Roles(cmd.Context())
			if err != nil {
				return err
			}
			perms, err := roles.ListPermissions(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range perms {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}

func lookupUser(ctx context.Context, backend Backend, email string) (*auth.User, RoleStore, error) {
	users, err := backend.Users(ctx)
	if err != nil {
		return nil, nil, err
	}
	user, err := users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, fmt.Errorf("no user with email %q", email)
		}
		return nil, nil, err
	}
	roles, err := backend.Roles(ctx)
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}
