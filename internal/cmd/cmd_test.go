package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memix/memix/internal/pkg/config"
	apperrors "github.com/memix/memix/internal/pkg/errors"
)

const testGroqKey = "gsk_abcdefghijklmnopqrstuvwxyz0123"

// isolateEnv clears every variable that could leak a real configuration into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GROQ_KEY", "")
	for _, key := range config.KnownKeys() {
		t.Setenv("MEMIX_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), "")
	}

	original := stdin
	stdin = nil
	t.Cleanup(func() { stdin = original })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd("test", "abc123", "today")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd("1.0.0", "abc123", "today")

	assert.Equal(t, "memix", root.Use)
	for _, name := range []string{"verbose", "config", "provider", "model", "profile"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
	for _, name := range []string{"dry-run", "yes", "output"} {
		assert.NotNil(t, root.Flags().Lookup(name), "missing flag %s", name)
	}

	var subcommands []string
	for _, c := range root.Commands() {
		subcommands = append(subcommands, c.Name())
	}
	assert.ElementsMatch(t, []string{"commit", "generate", "config", "profiles"}, subcommands)
}

func TestVersionOutput(t *testing.T) {
	out, _, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "memix test")
	assert.Contains(t, out, "abc123")
}

func TestProfilesCmd(t *testing.T) {
	out, _, err := execute(t, "profiles")

	require.NoError(t, err)
	assert.Contains(t, out, "* memix")
	assert.Contains(t, out, "mistral-saba-24b")
	assert.Contains(t, out, "classic")
	assert.Contains(t, out, "mixtral-8x7b-32768")
}

func TestConfigCmd(t *testing.T) {
	isolateEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := execute(t, "config", "set", "provider.api_key", testGroqKey, "--config", configPath)
	assert.Error(t, err, "set should fail before init")

	out, _, err := execute(t, "config", "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, _, err = execute(t, "config", "set", "provider.api_key", testGroqKey, "--config", configPath)
	require.NoError(t, err)
	assert.NotContains(t, out, testGroqKey)
	assert.Contains(t, out, "0123")

	out, _, err = execute(t, "config", "get", "provider.api_key", "--config", configPath)
	require.NoError(t, err)
	assert.NotContains(t, out, testGroqKey)

	out, _, err = execute(t, "config", "list", "--config", configPath)
	require.NoError(t, err)
	assert.NotContains(t, out, testGroqKey)
	assert.Contains(t, out, "provider:")
	assert.Contains(t, out, "  profile: memix")

	_, _, err = execute(t, "config", "set", "provider.colour", "x", "--config", configPath)
	assert.Error(t, err)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MEMIX_PROVIDER_MODEL", "env-model")

	root := NewRootCmd("test", "", "")
	require.NoError(t, root.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--model", "flag-model",
		"--profile", "classic",
	}))

	_, cfg, err := loadConfig(root)

	require.NoError(t, err)
	assert.Equal(t, "flag-model", cfg.Provider.Model)
	assert.Equal(t, "classic", cfg.Provider.Profile)
	assert.Equal(t, "groq", cfg.Provider.Name)
}

func TestCheckConfig(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{Provider: config.ProviderConfig{Name: "groq", APIKey: testGroqKey}}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   apperrors.ErrorCode
	}{
		{"valid", func(*config.Config) {}, 0},
		{"missing key", func(c *config.Config) { c.Provider.APIKey = "" }, apperrors.ErrMissingAPIKey},
		{"bad temperature", func(c *config.Config) { c.Provider.Temperature = 3 }, apperrors.ErrInvalidConfig},
		{"malformed key", func(c *config.Config) { c.Provider.APIKey = "not-a-groq-key-at-all-0000" }, apperrors.ErrInvalidConfig},
		{"custom endpoint skips format check", func(c *config.Config) {
			c.Provider.APIKey = "local-key"
			c.Provider.Endpoint = "http://localhost:8080/v1"
		}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := checkConfig(cfg)

			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRunCommit_MissingAPIKey(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())

	_, _, err := execute(t, "--yes", "--config", filepath.Join(t.TempDir(), "config.yaml"))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrMissingAPIKey), "got %v", err)
	assert.Equal(t, 1, apperrors.GetExitCode(err))
}

func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	c := exec.Command("git", args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return string(out)
}

func completionServer(t *testing.T, content string, calls *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testGroqKey, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": "mistral-saba-24b",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"total_tokens": 46},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRoot_CommitsWithSuggestedMessage(t *testing.T) {
	isolateEnv(t)
	repo := setupRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "app.js"), []byte("console.log('hi')\n"), 0644))
	runGit(t, repo, "add", "app.js")

	calls := 0
	server := completionServer(t, "  Add debug log statement\n", &calls)
	t.Setenv("GROQ_KEY", testGroqKey)
	t.Setenv("MEMIX_PROVIDER_ENDPOINT", server.URL)
	t.Chdir(repo)

	out, errOut, err := execute(t, "--yes", "--config", filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err, errOut)
	assert.Equal(t, 1, calls)
	assert.Contains(t, out, "Add debug log statement")
	assert.Contains(t, errOut, "Commit created!")
	assert.Equal(t, "Add debug log statement", strings.TrimSpace(runGit(t, repo, "log", "-1", "--format=%B")))
}

func TestRoot_DryRunDoesNotCommit(t *testing.T) {
	isolateEnv(t)
	repo := setupRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "a.txt"), []byte("a\n"), 0644))
	runGit(t, repo, "add", "a.txt")

	calls := 0
	server := completionServer(t, "Add a.txt", &calls)
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".env"),
		[]byte("GROQ_KEY="+testGroqKey+"\nMEMIX_PROVIDER_ENDPOINT="+server.URL+"\n"), 0600))
	t.Chdir(repo)

	msgFile := filepath.Join(t.TempDir(), "msg.txt")
	_, errOut, err := execute(t, "generate", "--yes", "-o", msgFile, "--config", filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err, errOut)
	assert.Equal(t, 1, calls)
	data, err := os.ReadFile(msgFile)
	require.NoError(t, err)
	assert.Equal(t, "Add a.txt\n", string(data))

	c := exec.Command("git", "rev-parse", "--verify", "HEAD")
	c.Dir = repo
	assert.Error(t, c.Run(), "no commit should exist after a dry run")
}

func TestRoot_NothingStagedSkipsProvider(t *testing.T) {
	isolateEnv(t)
	repo := setupRepo(t)

	calls := 0
	server := completionServer(t, "unused", &calls)
	t.Setenv("GROQ_KEY", testGroqKey)
	t.Setenv("MEMIX_PROVIDER_ENDPOINT", server.URL)
	t.Chdir(repo)

	_, errOut, err := execute(t, "--yes", "--config", filepath.Join(t.TempDir(), "config.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 0, calls)
	assert.Contains(t, errOut, "No staged changes found.")
}
