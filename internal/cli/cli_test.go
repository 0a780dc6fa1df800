package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/job"
)

const modelScript = `class Double {
  static apply(x) {
    return ops.mulScalar(x, 2);
  }
}
function forward(x) {
  return tracer.scope("block", () => {
    const y = ops.addScalar(x, 1);
    return tracer.foreign(Double, y);
  });
}
function branchy(x) {
  return ops.bool(x) ? ops.neg(x) : x;
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Host.PoolSize = 2

	cmd := NewRootCommand(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type jsonOutput struct {
	Reports []Report `json:"reports"`
	Summary Summary  `json:"summary"`
}

func TestTraceCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.js", modelScript)
	yamlJob := writeFile(t, dir, "forward.yaml", "name: forward\nscript: model.js\nentry: forward\nargument_names: [x]\ninputs:\n  - {data: [3], shape: []}\n")
	tomlJob := writeFile(t, dir, "branchy.toml", "name = \"branchy\"\nscript = \"model.js\"\nentry = \"branchy\"\ninputs = [ { data = [1.0], shape = [] } ]\n")

	out, err := execute(t, "trace", "--format", "json", yamlJob, tomlJob)
	require.NoError(t, err)

	var got jsonOutput
	require.NoError(t, sonic.Unmarshal([]byte(out), &got))
	require.Len(t, got.Reports, 2)

	forward := got.Reports[0]
	assert.Equal(t, "forward", forward.Job)
	assert.NotEmpty(t, forward.TraceID)
	assert.Equal(t, 1, forward.Inputs)
	require.Len(t, forward.Nodes, 3)
	assert.Equal(t, "prim::Constant", forward.Nodes[0].Kind)
	assert.Equal(t, "aten::add", forward.Nodes[1].Kind)
	assert.Equal(t, "block", forward.Nodes[1].Scope)
	assert.Equal(t, "model.js:8", forward.Nodes[1].Location)
	assert.Equal(t, "prim::ForeignCall", forward.Nodes[2].Kind)
	assert.Equal(t, "Double", forward.Nodes[2].Foreign)
	assert.Equal(t, "d", forward.Nodes[2].ArgTypes)
	assert.Empty(t, forward.Warnings)

	branchy := got.Reports[1]
	assert.Len(t, branchy.Warnings, 1)
	assert.Len(t, branchy.Console, 1)

	assert.Equal(t, int64(2), got.Summary.Traces)
	assert.Equal(t, int64(1), got.Summary.ForeignCalls)
	assert.Equal(t, int64(1), got.Summary.Warnings)
	assert.Equal(t, 2, got.Summary.Pool.Size)
	assert.Equal(t, "closed", got.Summary.Pool.Breaker)
}

func TestTraceCommandFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.js", modelScript)
	jobPath := writeFile(t, dir, "branchy.yaml", "script: model.js\nentry: branchy\ninputs:\n  - {data: [1], shape: []}\n")

	out, err := execute(t, "trace", "--strict=false", jobPath)
	require.NoError(t, err)
	assert.Contains(t, out, "== model.js (trace_")
	assert.Contains(t, out, "aten::neg")
	assert.NotContains(t, out, "warning:")
	assert.Contains(t, out, "1 trace(s), 0 failed")
}

func TestTraceCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.js", modelScript)
	good := writeFile(t, dir, "good.yaml", "script: model.js\nentry: forward\ninputs:\n  - {data: [1]}\n")
	missing := writeFile(t, dir, "missing.yaml", "script: model.js\nentry: nope\ninputs:\n  - 1.0\n")

	out, err := execute(t, "trace", good, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry function not found")
	assert.Contains(t, out, "prim::ForeignCall")
	assert.Contains(t, out, "error: ")
}

func TestTraceCommandDiscoversJobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.js", modelScript)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "jobs", "nested"), 0o755))
	writeFile(t, dir, "jobs/forward.yaml", "script: ../model.js\nentry: forward\ninputs:\n  - {data: [1]}\n")
	writeFile(t, dir, "jobs/nested/branchy.toml", "script = \"../../model.js\"\nentry = \"branchy\"\ninputs = [ { data = [1.0], shape = [] } ]\n")

	out, err := execute(t, "trace", filepath.Join(dir, "jobs"))
	require.NoError(t, err)
	assert.Contains(t, out, "2 trace(s), 0 failed")

	out, err = execute(t, "trace", filepath.Join(dir, "jobs", "**", "*.toml"))
	require.NoError(t, err)
	assert.Contains(t, out, "aten::neg")
	assert.Contains(t, out, "1 trace(s), 0 failed")

	_, err = execute(t, "trace", filepath.Join(dir, "jobs", "**", "*.json"))
	assert.ErrorIs(t, err, job.ErrNoJobs)
}

func TestTraceCommandRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "trace", "--format", "xml", "job.yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "hello.js", "console.log('sum', ops.data(ops.sum(tensor([1, 2])))[0]); 'done'")

	out, err := execute(t, "run", script)
	require.NoError(t, err)
	assert.Contains(t, out, "[log] sum 3")
	assert.Contains(t, out, "=> done")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tracer dev")
}
