package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/tracer/internal/jshost"
	"github.com/GriffinCanCode/AgentOS/tracer/internal/tracer"
)

var (
	ErrUnknownFormat = errors.New("job: unknown file format")
	ErrInvalid       = errors.New("job: invalid job")
)

// Format is a job file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Job describes one traced call of a script.
type Job struct {
	Name          string         `yaml:"name" toml:"name" json:"name"`
	Script        string         `yaml:"script" toml:"script" json:"script"`
	Entry         string         `yaml:"entry" toml:"entry" json:"entry"`
	ArgumentNames []string       `yaml:"argument_names" toml:"argument_names" json:"argument_names"`
	Inputs        []any          `yaml:"inputs" toml:"inputs" json:"inputs"`
	KeyedInputs   map[string]any `yaml:"keyed_inputs" toml:"keyed_inputs" json:"keyed_inputs"`
	Module        *Module        `yaml:"module" toml:"module" json:"module"`

	// Session mode overrides; unset keeps the configured default.
	Strict        *bool `yaml:"strict" toml:"strict" json:"strict"`
	ForceOutplace *bool `yaml:"force_outplace" toml:"force_outplace" json:"force_outplace"`

	// Directory the script path is resolved against.
	dir string
}

// Module declares the parameters visible to the script as "self".
type Module struct {
	Name       string         `yaml:"name" toml:"name" json:"name"`
	Parameters map[string]any `yaml:"parameters" toml:"parameters" json:"parameters"`
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and validates a job file. Relative script paths are resolved
// against the job file's directory.
func Load(path string) (*Job, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	j, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	j.dir = filepath.Dir(path)
	return j, nil
}

// jsonAPI decodes integer literals as int64 so JSON jobs type their inputs
// the way YAML and TOML jobs do.
var jsonAPI = sonic.Config{UseInt64: true}.Froze()

// Parse decodes and validates a job.
func Parse(data []byte, format Format) (*Job, error) {
	var j Job
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &j)
	case FormatTOML:
		err = toml.Unmarshal(data, &j)
	case FormatJSON:
		err = jsonAPI.Unmarshal(data, &j)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s parse error: %w", format, err)
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

// Validate checks required fields.
func (j *Job) Validate() error {
	switch {
	case j.Script == "":
		return fmt.Errorf("%w: script is required", ErrInvalid)
	case j.Entry == "":
		return fmt.Errorf("%w: entry is required", ErrInvalid)
	case len(j.Inputs) > 0 && j.KeyedInputs != nil:
		return fmt.Errorf("%w: inputs and keyed_inputs are mutually exclusive", ErrInvalid)
	}
	return nil
}

// DisplayName returns the job name, or the script name when unnamed.
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return filepath.Base(j.Script)
}

// ScriptPath returns the script location.
func (j *Job) ScriptPath() string {
	if filepath.IsAbs(j.Script) || j.dir == "" {
		return j.Script
	}
	return filepath.Join(j.dir, j.Script)
}

// Request reads the script and converts the inputs into a host request.
func (j *Job) Request() (jshost.Request, error) {
	src, err := os.ReadFile(j.ScriptPath())
	if err != nil {
		return jshost.Request{}, fmt.Errorf("read script: %w", err)
	}

	req := jshost.Request{
		Name:          filepath.Base(j.Script),
		Script:        string(src),
		Entry:         j.Entry,
		ArgumentNames: j.ArgumentNames,
	}

	if j.KeyedInputs != nil {
		req.Keyed = make(map[string]any, len(j.KeyedInputs))
		for name, raw := range j.KeyedInputs {
			v, err := ConvertInput(raw)
			if err != nil {
				return jshost.Request{}, fmt.Errorf("input %q: %w", name, err)
			}
			req.Keyed[name] = v
		}
	} else {
		req.Inputs = make([]any, len(j.Inputs))
		for i, raw := range j.Inputs {
			v, err := ConvertInput(raw)
			if err != nil {
				return jshost.Request{}, fmt.Errorf("input %d: %w", i, err)
			}
			req.Inputs[i] = v
		}
	}

	if j.Module != nil {
		m, err := j.Module.build()
		if err != nil {
			return jshost.Request{}, err
		}
		req.Module = m
	}
	return req, nil
}

// Options returns the session overrides of the job.
func (j *Job) Options() []tracer.Option {
	var opts []tracer.Option
	if j.Strict != nil {
		opts = append(opts, tracer.WithStrict(*j.Strict))
	}
	if j.ForceOutplace != nil {
		opts = append(opts, tracer.WithForceOutplace(*j.ForceOutplace))
	}
	return opts
}

func (m *Module) build() (*jshost.Module, error) {
	names := make([]string, 0, len(m.Parameters))
	for name := range m.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &jshost.Module{Name: m.Name}
	if out.Name == "" {
		out.Name = "Module"
	}
	for _, name := range names {
		t, err := convertTensor(m.Parameters[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out.Parameters = append(out.Parameters, tracer.NamedTensor{Name: name, Tensor: t})
	}
	return out, nil
}
