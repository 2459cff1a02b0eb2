package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwatch/spendwatch/internal/config"
)

func TestEnvSource(t *testing.T) {
	t.Setenv("SPENDWATCH_TEST_KEY", "  sk-from-env\n")

	s := &EnvSource{Var: "SPENDWATCH_TEST_KEY"}
	cred, err := s.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cred)
}

func TestEnvSource_Unset(t *testing.T) {
	s := &EnvSource{Var: "SPENDWATCH_TEST_KEY_UNSET"}
	_, err := s.Credential(context.Background())
	require.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("sk-from-file\n"), 0600))

	s := &FileSource{Path: path}
	cred, err := s.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cred)
}

func TestFileSource_MissingOrEmpty(t *testing.T) {
	s := &FileSource{Path: filepath.Join(t.TempDir(), "nope")}
	_, err := s.Credential(context.Background())
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0600))
	_, err = (&FileSource{Path: empty}).Credential(context.Background())
	require.Error(t, err)
}

func TestExecSource(t *testing.T) {
	s := &ExecSource{Command: []string{"echo", "sk-from-exec"}}
	cred, err := s.Credential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-from-exec", cred)
}

func TestExecSource_Failure(t *testing.T) {
	s := &ExecSource{Command: []string{"false"}}
	_, err := s.Credential(context.Background())
	require.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.CredentialConfig
		want any
	}{
		{"env", config.CredentialConfig{Provider: "env", EnvVar: "K"}, &EnvSource{}},
		{"file", config.CredentialConfig{Provider: "file", Path: "/k"}, &FileSource{}},
		{"exec", config.CredentialConfig{Provider: "exec", Command: []string{"pass", "show", "k"}}, &ExecSource{}},
		{"awssm", config.CredentialConfig{Provider: "awssm", SecretID: "k"}, &ManagerSource{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := FromConfig(tc.cfg)
			require.NoError(t, err)
			assert.IsType(t, tc.want, src)
		})
	}

	_, err := FromConfig(config.CredentialConfig{Provider: "vault"})
	require.Error(t, err)
}
