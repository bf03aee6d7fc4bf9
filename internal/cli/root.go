// Package cli implements libraryctl, the operator command line for the
// library: schema migrations, role grants and job triggers.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/locallibrary/locallibrary/internal/auth"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/jobs"
)

// Migrator is the subset of *migrate.Migrate the migrate commands use.
type Migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// RoleStore reads and changes role assignments.
type RoleStore interface {
	GetRoleByName(ctx context.Context, name string) (rbac.Role, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
	ListPermissions(ctx context.Context) ([]rbac.Permission, error)
}

// UserFinder looks up accounts by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// JobQueue enqueues and inspects background work.
type JobQueue interface {
	EnqueueDueReminder(ctx context.Context, payload jobs.DueReminderPayload) (*asynq.TaskInfo, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// Backend opens the resources a command needs on first use.
type Backend interface {
	Migrator() (Migrator, error)
	Roles(ctx context.Context) (RoleStore, error)
	Users(ctx context.Context) (UserFinder, error)
	Jobs() (JobQueue, error)
	Close()
}

// Execute runs libraryctl and returns the process exit code.
func Execute(backend Backend) int {
	defer backend.Close()
	cmd := NewRootCmd(backend, os.Stdout)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd assembles the command tree writing to out.
func NewRootCmd(backend Backend, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Operate the local library service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newMigrateCmd(backend))
	root.AddCommand(newUsersCmd(backend))
	root.AddCommand(newJobsCmd(backend))
	return root
}
