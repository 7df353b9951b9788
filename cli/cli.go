// Package cli implements the autopallet command-line interface.
//
// Commands:
//   - serve: run the HTTP service
//   - plan: stack one box type on one pallet and print the placement records
//   - batch: plan every row of an Excel sheet
//   - runs: list or show stored runs
//
// Settings come from config.Load; --verbose forces debug logging.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"autoPallet/config"
	"autoPallet/service"
	"autoPallet/store"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// app is the state shared by every command once flags are parsed.
type app struct {
	configPath string
	envFile    string
	verbose    bool

	cfg    config.Config
	logger *log.Logger
	out    io.Writer
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath, a.envFile)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.cfg = cfg
	a.logger = newLogger(os.Stderr, level)
	return nil
}

// runner builds a service.Runner. With persist false nothing is written to
// disk and the returned close func is a no-op.
func (a *app) runner(persist bool) (*service.Runner, func(), error) {
	opts := a.cfg.StackerOptions()
	opts.Logger = a.logger
	r := &service.Runner{Options: opts, Logger: a.logger}
	if !persist {
		return r, func() {}, nil
	}

	s, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	r.Store = s
	r.OutputDir = a.cfg.OutputDir
	return r, func() { s.Close() }, nil
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:          "autopallet",
		Short:        "autopallet plans cross-layer pallet stacks for a single SKU",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with AUTOPALLET_* settings")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPlanCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newRunsCmd(a))
	return root
}

// Execute runs the CLI under ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}
