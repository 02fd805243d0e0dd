// Package cli is the wavestore command line. It is the state layer of the
// application: every command goes through the storage facade.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavestore/internal/config"
	"github.com/llehouerou/wavestore/internal/errmsg"
	"github.com/llehouerou/wavestore/internal/logging"
	"github.com/llehouerou/wavestore/internal/storage"
)

// app carries what the commands share once the root command has run its
// pre-run hook.
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store storage.Interface

	dbPath   string
	logLevel string

	closers []io.Closer
}

// opError tags an error with the operation that failed, for presentation.
type opError struct {
	op  errmsg.Op
	ctx string
	err error
}

func (e *opError) Error() string { return errmsg.FormatWith(e.op, e.ctx, e.err) }
func (e *opError) Unwrap() error { return e.err }

func fail(op errmsg.Op, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

func failWith(op errmsg.Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, ctx: context, err: err}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close() //nolint:errcheck // nothing left to report to

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var oe *opError
		if !errors.As(err, &oe) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		fmt.Fprintln(stderr, oe.Error())
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wavestore",
		Short:         "wavestore manages a personal music library database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		a.importCmd(),
		a.lsCmd(),
		a.showCmd(),
		a.rmCmd(),
		a.renameCmd(),
		a.searchCmd(),
		a.likeCmd(),
		a.unlikeCmd(),
		a.likedCmd(),
		a.tagCmd(),
		a.playlistCmd(),
		a.pruneCmd(),
		a.reindexCmd(),
		a.verifyCmd(),
		a.statsCmd(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fail(errmsg.OpInitialize, err)
	}
	if a.dbPath != "" {
		cfg.Database = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return fail(errmsg.OpInitialize, err)
	}
	a.log = logger
	a.closers = append(a.closers, closer)

	store, err := storage.Open(ctx, storage.Options{
		Path:        cfg.Database,
		BusyTimeout: cfg.BusyTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return fail(errmsg.OpInitialize, err)
	}
	a.store = store
	a.closers = append(a.closers, store)
	return nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
