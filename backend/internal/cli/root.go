// Package cli implements the profiles command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"profilegraph/backend/internal/constants"
	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
	"profilegraph/backend/pkg/config"
	apperrors "profilegraph/backend/pkg/errors"
	"profilegraph/backend/pkg/logger"
)

// OpenFunc opens the store a command runs against.
type OpenFunc func(ctx context.Context, cfg *config.Config, reset bool, log *zap.Logger) (graph.Store, error)

// Options configures the command tree.
type Options struct {
	Config *config.Config
	// Logger overrides the file logger built from --log-file.
	Logger *zap.Logger
	// Open defaults to graph.Open.
	Open OpenFunc
}

type app struct {
	cfg    *config.Config
	open   OpenFunc
	logger *zap.Logger

	firstname string
	lastname  string
	dbPath    string
	logFile   string
	reset     bool

	store graph.Store
}

// NewRootCommand builds the profiles command tree.
func NewRootCommand(opts Options) *cobra.Command {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{Backend: constants.BackendSQLite, DBPath: constants.DefaultDBName, LogFile: constants.DefaultLogFile}
	}
	a := &app{cfg: cfg, open: opts.Open, logger: opts.Logger}
	if a.open == nil {
		a.open = graph.Open
	}

	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Manage a graph of profiles and friendships",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.firstname, "first-name", "f", "", "first name of the profile")
	flags.StringVarP(&a.lastname, "last-name", "l", "", "last name of the profile")
	flags.StringVar(&a.dbPath, "db", cfg.DBPath, "path of the SQLite database")
	flags.StringVar(&a.logFile, "log-file", cfg.LogFile, "file receiving the log")
	flags.BoolVar(&a.reset, "reset", false, "drop every profile and friendship before running")

	root.AddCommand(
		a.addProfileCommand(),
		a.removeProfileCommand(),
		a.modifyProfileCommand(),
		a.addFriendCommand(),
		a.removeFriendCommand(),
		a.showCommand(),
		a.dumpCommand(),
		versionCommand(),
	)

	return root
}

// setup opens the logger and the store. requireName makes --first-name and
// --last-name mandatory.
func (a *app) setup(cmd *cobra.Command, requireName bool) error {
	if requireName {
		for _, name := range []string{"first-name", "last-name"} {
			if f := cmd.Flag(name); f == nil || !f.Changed {
				return fmt.Errorf("--%s is required", name)
			}
		}
	}

	if a.logger == nil {
		var paths []string
		if a.logFile != "" {
			paths = append(paths, a.logFile)
		}
		log, err := logger.New(a.cfg.Env, paths...)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logger = log
	}

	cfg := *a.cfg
	cfg.DBPath = a.dbPath

	store, err := a.open(cmd.Context(), &cfg, a.reset, a.logger)
	if err != nil {
		a.logger.Error("Storage initialization failed", zap.Error(err))
		return err
	}
	a.store = store
	return nil
}

func (a *app) teardown(cmd *cobra.Command) {
	if a.store != nil {
		if err := a.store.Close(cmd.Context()); err != nil {
			a.logger.Warn("Failed to close store", zap.Error(err))
		}
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// run wraps a command body with setup, teardown and user-error reporting.
func (a *app) run(requireName bool, body func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd, requireName); err != nil {
			return err
		}
		defer a.teardown(cmd)

		err := body(cmd, args)
		if err != nil && apperrors.IsUserError(err) {
			a.logger.Error("Command rejected", zap.String("command", cmd.Name()), zap.Error(err))
			fmt.Fprintln(cmd.OutOrStdout(), apperrors.UserMessage(err))
			return nil
		}
		return err
	}
}

func (a *app) profile() *state.Profile {
	return state.NewProfile(a.firstname, a.lastname)
}
