// Package cli implements the socialdb command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/socialdb/internal/config"
	"github.com/mesh-intelligence/socialdb/internal/paths"
	"github.com/mesh-intelligence/socialdb/pkg/socialdb"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// RootOptions holds global flag values shared by all subcommands.
type RootOptions struct {
	ConfigDir string

	// configDir is ConfigDir after resolution against the environment.
	configDir string
}

// settings loads the configuration for commands that need it.
func (o *RootOptions) settings() (config.Settings, error) {
	s, err := config.Load(o.configDir)
	if err != nil {
		return config.Settings{}, userError(err)
	}
	return s, nil
}

// NewRootCmd creates the top-level "socialdb" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:     "socialdb",
		Short:   "An in-memory relational store for users, profiles and posts",
		Long:    "socialdb serves users, profiles, posts and member types over HTTP\nfrom an in-memory store with referential integrity and a follow graph.",
		Version: socialdb.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.ResolveConfigDir(opts.ConfigDir)
			if err != nil {
				return sysError(fmt.Errorf("resolve config directory: %w", err))
			}
			opts.configDir = dir
			if err := config.LoadEnv(paths.EnvFiles(dir)...); err != nil {
				return userError(err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default: $"+paths.EnvConfigDir+" or the platform config dir)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newMemberTypesCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// Run executes the root command with args and returns the process exit code.
// Cancelling ctx stops a running serve command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// Execute runs the root command against the process arguments and exits with
// the appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
