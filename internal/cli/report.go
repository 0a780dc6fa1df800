package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/ir"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/jshost"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/shared/id"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text or json)", format)
}

// Report is the printable outcome of one job.
type Report struct {
	Job        string       `json:"job"`
	JobID      string       `json:"job_id"`
	TraceID    string       `json:"trace_id,omitempty"`
	Graph      string       `json:"graph,omitempty"`
	Inputs     int          `json:"inputs"`
	Nodes      []NodeReport `json:"nodes,omitempty"`
	Outputs    []string     `json:"outputs,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
	Console    []string     `json:"console,omitempty"`
	DurationMS float64      `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`

	err error
}

// NodeReport describes one recorded node.
type NodeReport struct {
	Kind     string   `json:"kind"`
	Inputs   []string `json:"inputs"`
	Outputs  []string `json:"outputs"`
	Scope    string   `json:"scope,omitempty"`
	Location string   `json:"location,omitempty"`
	Foreign  string   `json:"foreign,omitempty"`
	ArgTypes string   `json:"arg_types,omitempty"`
}

// Summary aggregates the metrics of one invocation.
type Summary struct {
	Traces       int64 `json:"traces"`
	FailedTraces int64 `json:"failed_traces"`
	Nodes        int64 `json:"nodes"`
	ForeignCalls int64 `json:"foreign_calls"`
	Warnings     int64 `json:"warnings"`

	Pool jshost.PoolStats `json:"pool"`
}

func newReport(name string, jobID id.JobID, result *jshost.Result) *Report {
	s := result.State
	g := s.Graph()
	r := &Report{
		Job:        name,
		JobID:      jobID.String(),
		TraceID:    s.ID().String(),
		Graph:      s.String(),
		Inputs:     len(g.Inputs()),
		Warnings:   s.Warnings(),
		Console:    consoleLines(result.Console),
		DurationMS: float64(result.Duration.Microseconds()) / 1000,
	}
	for _, n := range g.Nodes() {
		r.Nodes = append(r.Nodes, nodeReport(n))
	}
	for _, out := range result.Outputs {
		r.Outputs = append(r.Outputs, fmt.Sprint(out))
	}
	return r
}

func nodeReport(n *ir.Node) NodeReport {
	nr := NodeReport{
		Kind:    n.Name(),
		Inputs:  valueNames(n.Inputs()),
		Outputs: valueNames(n.Outputs()),
		Scope:   n.Scope().String(),
	}
	if file, line, ok := n.SourceRange().Location(); ok {
		nr.Location = fmt.Sprintf("%s:%d", file, line)
	}
	if fc := n.Foreign(); fc != nil {
		nr.Foreign = fc.Name
		nr.ArgTypes = fc.ArgTypes
	}
	return nr
}

func valueNames(vs []*ir.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func failedReport(name string, jobID id.JobID, err error) *Report {
	return &Report{Job: name, JobID: jobID.String(), Error: err.Error(), err: err}
}

func consoleLines(entries []jshost.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("[%s] %s", e.Level, e.Message)
	}
	return out
}

func render(w io.Writer, format string, reports []*Report, snap monitoring.Snapshot, pool jshost.PoolStats) error {
	summary := Summary{
		Traces:       snap.Traces,
		FailedTraces: snap.FailedTraces,
		Nodes:        snap.Nodes,
		ForeignCalls: snap.ForeignCalls,
		Warnings:     snap.Warnings,
		Pool:         pool,
	}

	if format == formatJSON {
		data, err := sonic.MarshalIndent(struct {
			Reports []*Report `json:"reports"`
			Summary Summary   `json:"summary"`
		}{reports, summary}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	var sb strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&sb, "== %s", r.Job)
		if r.TraceID != "" {
			fmt.Fprintf(&sb, " (%s)", r.TraceID)
		}
		sb.WriteString(" ==\n")
		if r.Error != "" {
			fmt.Fprintf(&sb, "error: %s\n", r.Error)
		} else {
			sb.WriteString(r.Graph)
		}
		for _, line := range r.Console {
			fmt.Fprintf(&sb, "console: %s\n", line)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(&sb, "warning: %s\n", warning)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d trace(s), %d failed, %d node(s), %d foreign call(s), %d warning(s)\n",
		summary.Traces, summary.FailedTraces, summary.Nodes, summary.ForeignCalls, summary.Warnings)
	if pool.Breaker != "closed" {
		fmt.Fprintf(&sb, "runtime pool breaker is %s\n", pool.Breaker)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
