// Package cmd implements the domports command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chrisuehlinger/domports/config"
	"github.com/chrisuehlinger/domports/observability"
)

// Version is the application version, set at build time with
// -ldflags "-X github.com/chrisuehlinger/domports/cmd.Version=1.0.0".
var Version = "dev"

// app holds state shared by every subcommand once the root's
// PersistentPreRunE has run.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCommand builds the command tree with fresh state.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "domports",
		Short:         "Drive an HTML document through named command and event ports.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.domports/config.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console or json)")
	flags.Bool("log-ports", false, "log every command and emission")
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logger.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("logger.log_ports", flags.Lookup("log-ports"))

	root.AddCommand(
		newRunCommand(a),
		newReplayCommand(a),
		newPortsCommand(),
	)
	return root
}

// initialize reads configuration and builds the logger. Log output goes
// to the command's stderr so stdout carries only results.
func (a *app) initialize(cmd *cobra.Command) error {
	config.SetDefaults(a.v)
	config.BindEnv(a.v)
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
	a.logger.Debug("Starting domports", zap.String("version", Version), zap.String("command", cmd.Name()))
	return nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
