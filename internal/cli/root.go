package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/logging"
)

// Version information (injected via ldflags at build time)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// environment holds what every command needs, built before it runs.
type environment struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewRootCommand creates the root command. A nil cfg loads configuration
// from the environment.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	env := &environment{cfg: cfg}
	var (
		logLevel string
		dev      bool
	)

	cmd := &cobra.Command{
		Use:   "tracer",
		Short: "Record JavaScript tensor programs as dataflow graphs",
		Long: `tracer runs a JavaScript function once on example inputs and records
every tensor operation it performs as an IR graph, with the script location
of each operation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if env.cfg == nil {
				loaded, err := config.Load()
				if err != nil {
					return err
				}
				env.cfg = loaded
			}
			if cmd.Flags().Changed("log-level") {
				env.cfg.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("dev") {
				env.cfg.Logging.Development = dev
			} else if logging.IsDevelopment() {
				env.cfg.Logging.Development = true
			}

			logCfg := logging.DefaultConfig()
			if env.cfg.Logging.Development {
				logCfg = logging.DevelopmentConfig()
			}
			logCfg.Level = env.cfg.Logging.Level
			logger, err := logging.New(logCfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			env.logger = logger
			env.metrics = monitoring.NewMetrics(env.cfg.Metrics.Namespace)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.logger != nil {
				_ = env.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&dev, "dev", false, "Human-readable development logging (default from TRACER_ENV=dev)")

	cmd.AddCommand(newTraceCommand(env))
	cmd.AddCommand(newRunCommand(env))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tracer %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return err
		},
	}
}
