package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/job"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/jshost"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

type traceFlags struct {
	strict        bool
	forceOutplace bool
	format        string
}

func newTraceCommand(env *environment) *cobra.Command {
	var flags traceFlags

	cmd := &cobra.Command{
		Use:   "trace JOB|DIR|GLOB...",
		Short: "Trace script entry points described by job files",
		Long: `Trace loads each job file (YAML, TOML or JSON), runs the named entry
function of its script once on the job's inputs and prints the recorded graph.
Directories are searched recursively for job files and patterns such as
"jobs/**/*.yaml" are expanded. Jobs run concurrently on a pool of JavaScript
runtimes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}
			return runTrace(cmd, env, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", true, "Warn when traced values steer control flow")
	cmd.Flags().BoolVar(&flags.forceOutplace, "force-outplace", false, "Record in-place ops as out-of-place")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatText, "Output format (text, json)")
	return cmd
}

func runTrace(cmd *cobra.Command, env *environment, flags traceFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths, err := job.Discover(ctx, args)
	if err != nil {
		return err
	}
	env.logger.Debug("discovered jobs", zap.Int("count", len(paths)), zap.Strings("paths", paths))

	jshost.Install(env.logger)
	pool, err := jshost.NewPool(jshost.ConfigFrom(env.cfg), env.cfg.Host.PoolSize, env.logger)
	if err != nil {
		return fmt.Errorf("create runtime pool: %w", err)
	}
	defer pool.Close()

	opts := []tracer.Option{
		tracer.WithConfig(env.cfg.Tracer),
		tracer.WithMetrics(env.metrics),
	}
	if cmd.Flags().Changed("strict") {
		opts = append(opts, tracer.WithStrict(flags.strict))
	}
	if cmd.Flags().Changed("force-outplace") {
		opts = append(opts, tracer.WithForceOutplace(flags.forceOutplace))
	}

	reports := make([]*Report, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					env.logger.Error("job panicked", zap.String("path", path), zap.Any("panic", p))
					reports[i] = failedReport(path, id.NewJobID(), fmt.Errorf("job panicked: %v", p))
				}
			}()
			reports[i] = traceJob(ctx, env, pool, path, opts)
		}(i, path)
	}
	wg.Wait()

	if err := render(cmd.OutOrStdout(), flags.format, reports, env.metrics.GetSnapshot(), pool.Stats()); err != nil {
		return err
	}

	var errs []error
	for _, r := range reports {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job, r.err))
		}
	}
	return errors.Join(errs...)
}

// traceJob loads and traces one job. Failures are reported, not returned,
// so one broken job does not hide the others.
func traceJob(ctx context.Context, env *environment, pool *jshost.Pool, path string, opts []tracer.Option) *Report {
	jobID := id.NewJobID()
	log := env.logger.With(zap.String("job_id", jobID.String()), zap.String("path", path))

	j, err := job.Load(path)
	if err != nil {
		log.Error("failed to load job", zap.Error(err))
		return failedReport(path, jobID, err)
	}
	req, err := j.Request()
	if err != nil {
		log.Error("failed to prepare job", zap.Error(err))
		return failedReport(j.DisplayName(), jobID, err)
	}

	// Job overrides win over flags, flags over configuration.
	opts = append(append([]tracer.Option(nil), opts...), j.Options()...)
	result, err := pool.Trace(ctx, req, opts...)
	if err != nil {
		log.Error("trace failed", zap.String("job", j.DisplayName()), zap.Error(err))
		r := failedReport(j.DisplayName(), jobID, err)
		if result != nil {
			r.Console = consoleLines(result.Console)
		}
		return r
	}

	r := newReport(j.DisplayName(), jobID, result)
	log.Info("trace finished",
		zap.String("job", r.Job),
		zap.String("trace_id", r.TraceID),
		zap.Int("nodes", len(r.Nodes)),
		zap.Int("warnings", len(r.Warnings)))
	return r
}
