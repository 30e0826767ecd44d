package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sourceweaver/sourceweaver/internal/model"
)

// Runner executes one external analysis for a target and returns the
// raw JSON document the analysis produced.
type Runner interface {
	Run(ctx context.Context, target model.Target) ([]byte, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, target model.Target) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, target model.Target) ([]byte, error) {
	return f(ctx, target)
}

// Script dispatch errors.
var (
	// ErrUnsupportedKind is returned when no script is mapped for the
	// target kind.
	ErrUnsupportedKind = errors.New("no analysis script for target kind")

	// ErrScriptNotFound is returned when the mapped script is missing
	// on disk.
	ErrScriptNotFound = errors.New("analysis script not found")
)

const (
	defaultScriptTimeout = 2 * time.Minute
	infoProbeTimeout     = 10 * time.Second
)

// DefaultScripts returns the standard mapping from target kinds to
// analysis script file names.
func DefaultScripts() map[model.TargetKind]string {
	return map[model.TargetKind]string{
		model.TargetIP:     "ip_analysis.py",
		model.TargetDomain: "domain_analysis.py",
		model.TargetURL:    "url_analysis.py",
	}
}

// ExecRunner runs analysis scripts as subprocesses. Each target kind
// maps to one script under the configured directory; the script
// receives the target value and a --format=json flag and must print a
// JSON document on stdout.
//
// The subprocess environment is built solely from the configured
// variables so credentials reach a script only when explicitly
// granted.
type ExecRunner struct {
	interpreter string
	dir         string
	scripts     map[model.TargetKind]string
	timeout     time.Duration
	env         map[string]string
	logger      *slog.Logger
}

// RunnerOption configures an ExecRunner.
type RunnerOption func(*ExecRunner)

// WithInterpreter sets the interpreter binary. Default is "python3".
func WithInterpreter(interpreter string) RunnerOption {
	return func(r *ExecRunner) {
		if interpreter != "" {
			r.interpreter = interpreter
		}
	}
}

// WithScripts replaces the kind-to-script mapping.
func WithScripts(scripts map[model.TargetKind]string) RunnerOption {
	return func(r *ExecRunner) {
		if len(scripts) > 0 {
			r.scripts = scripts
		}
	}
}

// WithScriptTimeout caps the runtime of one script execution.
func WithScriptTimeout(timeout time.Duration) RunnerOption {
	return func(r *ExecRunner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithScriptEnv sets the environment variables passed to scripts.
func WithScriptEnv(env map[string]string) RunnerOption {
	return func(r *ExecRunner) {
		r.env = env
	}
}

// WithRunnerLogger sets a custom logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *ExecRunner) {
		r.logger = logger
	}
}

// NewExecRunner creates an ExecRunner over the given script directory.
func NewExecRunner(dir string, opts ...RunnerOption) *ExecRunner {
	r := &ExecRunner{
		interpreter: "python3",
		dir:         dir,
		scripts:     DefaultScripts(),
		timeout:     defaultScriptTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// scriptPath resolves and stats the script for a kind.
func (r *ExecRunner) scriptPath(kind model.TargetKind) (string, error) {
	name, ok := r.scripts[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, path)
	}
	return path, nil
}

// Run executes the analysis script mapped to the target's kind and
// returns its stdout, validated to be a JSON document.
func (r *ExecRunner) Run(ctx context.Context, target model.Target) ([]byte, error) {
	path, err := r.scriptPath(target.Kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.exec(ctx, path, target.Value, "--format=json")
	if err != nil {
		return nil, err
	}
	out = bytes.TrimSpace(out)
	if !json.Valid(out) {
		return nil, fmt.Errorf("script %s returned invalid JSON", filepath.Base(path))
	}
	return out, nil
}

// exec runs one subprocess and returns its stdout. On failure the
// script's stderr becomes the error message.
func (r *ExecRunner) exec(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.interpreter, append([]string{path}, args...)...)
	cmd.Env = r.scriptEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running analysis script", "script", filepath.Base(path))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("script %s: %w", filepath.Base(path), ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("script %s failed: %s", filepath.Base(path), msg)
	}
	return stdout.Bytes(), nil
}

// scriptEnv builds the subprocess environment from the configured
// variables only; the parent environment is never inherited.
func (r *ExecRunner) scriptEnv() []string {
	env := make([]string, 0, len(r.env))
	for k, v := range r.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// ScriptInfo describes one analysis script.
type ScriptInfo struct {
	Name        string `json:"name"`
	TargetType  string `json:"target_type"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Info probes the script for a kind with its --info flag. Scripts
// that do not implement the flag get fallback metadata derived from
// the mapping.
func (r *ExecRunner) Info(ctx context.Context, kind model.TargetKind) (*ScriptInfo, error) {
	path, err := r.scriptPath(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, infoProbeTimeout)
	defer cancel()

	if out, err := r.exec(ctx, path, "--info"); err == nil {
		var info ScriptInfo
		if jsonErr := json.Unmarshal(bytes.TrimSpace(out), &info); jsonErr == nil && info.Name != "" {
			return &info, nil
		}
	}

	return &ScriptInfo{
		Name:        filepath.Base(path),
		TargetType:  string(kind),
		Description: fmt.Sprintf("analysis script for %s targets", kind),
	}, nil
}

// ScriptHealth reports the availability of one configured script.
type ScriptHealth struct {
	Kind      model.TargetKind `json:"kind"`
	Script    string           `json:"script"`
	Available bool             `json:"available"`
}

// Health reports the on-disk availability of every configured script,
// ordered by kind.
func (r *ExecRunner) Health() []ScriptHealth {
	kinds := make([]model.TargetKind, 0, len(r.scripts))
	for kind := range r.scripts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	out := make([]ScriptHealth, 0, len(kinds))
	for _, kind := range kinds {
		_, err := os.Stat(filepath.Join(r.dir, r.scripts[kind]))
		out = append(out, ScriptHealth{
			Kind:      kind,
			Script:    r.scripts[kind],
			Available: err == nil,
		})
	}
	return out
}
