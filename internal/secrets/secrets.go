// Package secrets retrieves the billing API credential.
//
// DESIGN: The credential is an opaque bearer value resolved once at startup
// and injected into the evaluator; it is never mutated, logged, or written
// anywhere afterwards. Providers:
//   - env:   read an environment variable (default, matches existing deploys)
//   - file:  read a file, trimmed (e.g. a mounted secret)
//   - exec:  run a command and use its stdout (e.g. `pass show openai/key`)
//   - awssm: AWS Secrets Manager (awssm.go)
package secrets

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spendwatch/spendwatch/internal/config"
)

// Source yields the billing API credential.
type Source interface {
	Credential(ctx context.Context) (string, error)
}

// FromConfig builds the configured credential source.
func FromConfig(cfg config.CredentialConfig) (Source, error) {
	switch cfg.Provider {
	case "env":
		return &EnvSource{Var: cfg.EnvVar}, nil
	case "file":
		return &FileSource{Path: cfg.Path}, nil
	case "exec":
		return &ExecSource{Command: cfg.Command}, nil
	case "awssm":
		return &ManagerSource{SecretID: cfg.SecretID, Region: cfg.Region}, nil
	default:
		return nil, fmt.Errorf("unknown credential provider %q", cfg.Provider)
	}
}

// EnvSource reads the credential from an environment variable.
type EnvSource struct {
	Var string
}

func (s *EnvSource) Credential(_ context.Context) (string, error) {
	v := strings.TrimSpace(os.Getenv(s.Var))
	if v == "" {
		return "", fmt.Errorf("environment variable %s is empty or unset", s.Var)
	}
	return v, nil
}

// FileSource reads the credential from a file.
type FileSource struct {
	Path string
}

func (s *FileSource) Credential(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("credential file %s is empty", s.Path)
	}
	return v, nil
}

// ExecSource runs a command and takes the first line of its stdout.
type ExecSource struct {
	Command []string
}

func (s *ExecSource) Credential(ctx context.Context) (string, error) {
	if len(s.Command) == 0 {
		return "", fmt.Errorf("credential command is empty")
	}
	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run credential command %s: %w", s.Command[0], err)
	}
	v := strings.TrimSpace(string(out))
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if v == "" {
		return "", fmt.Errorf("credential command %s produced no output", s.Command[0])
	}
	return v, nil
}
