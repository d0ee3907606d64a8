package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "")
	t.Setenv("GITLAB_URL", "")
	configPath := writeConfig(t, `
provider: gitlab
providers:
  gitlab:
    base_url: "https://gitlab.example.com"
    auth_method: private_token
    token: "file-token"
poll:
  interval_seconds: 10
review:
  max_age_days: 7
scoring:
  bot_username: "merge-bot"
  main_branches: ["trunk"]
logging:
  dir: "/var/log/mrboard"
  retention_days: 5
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Providers.GitLab.BaseURL != "https://gitlab.example.com" {
		t.Errorf("GitLab.BaseURL = %q", cfg.Providers.GitLab.BaseURL)
	}
	if cfg.Providers.GitLab.AuthMethod != AuthPrivateToken {
		t.Errorf("GitLab.AuthMethod = %q, want %q", cfg.Providers.GitLab.AuthMethod, AuthPrivateToken)
	}
	if cfg.Providers.GitLab.Token != "file-token" {
		t.Errorf("GitLab.Token = %q, want %q", cfg.Providers.GitLab.Token, "file-token")
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Errorf("PollInterval() = %v, want 10s", cfg.PollInterval())
	}
	if cfg.Review.MaxAgeDays != 7 {
		t.Errorf("Review.MaxAgeDays = %d, want 7", cfg.Review.MaxAgeDays)
	}
	if cfg.Scoring.BotUsername != "merge-bot" || len(cfg.Scoring.MainBranches) != 1 {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.Logging.Dir != "/var/log/mrboard" || cfg.Logging.RetentionDays != 5 {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	// Untouched sections keep their defaults.
	if cfg.Display.ReferenceWidth != 25 || !cfg.Display.Hyperlinks {
		t.Errorf("Display = %+v, want defaults", cfg.Display)
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Errorf("RequestTimeout() = %v, want 15s", cfg.RequestTimeout())
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "")
	t.Setenv("MY_SECRET", "from-env")
	configPath := writeConfig(t, `
providers:
  gitlab:
    token: "${MY_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Providers.GitLab.Token != "from-env" {
		t.Errorf("GitLab.Token = %q, want %q", cfg.Providers.GitLab.Token, "from-env")
	}
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "env-token")
	t.Setenv("MRBOARD_PROVIDER", "github")
	t.Setenv("GITHUB_TOKEN", "gh-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Providers.GitLab.Token != "env-token" {
		t.Errorf("GitLab.Token = %q, want %q", cfg.Providers.GitLab.Token, "env-token")
	}
	if cfg.Provider != ProviderGitHub {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderGitHub)
	}
	if cfg.Providers.GitHub.Token != "gh-token" {
		t.Errorf("GitHub.Token = %q, want %q", cfg.Providers.GitHub.Token, "gh-token")
	}
}

func TestLoadConfig_EmptyEnvKeepsFileValues(t *testing.T) {
	// A blank line in .env exports the variable with an empty value.
	t.Setenv("GITLAB_TOKEN", "")
	t.Setenv("GITLAB_URL", "")
	t.Setenv("MRBOARD_PROVIDER", "")
	configPath := writeConfig(t, `
provider: gitlab
providers:
  gitlab:
    base_url: "https://gitlab.example.com"
    token: "file-token"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Providers.GitLab.Token != "file-token" {
		t.Errorf("GitLab.Token = %q, want %q", cfg.Providers.GitLab.Token, "file-token")
	}
	if cfg.Providers.GitLab.BaseURL != "https://gitlab.example.com" {
		t.Errorf("GitLab.BaseURL = %q", cfg.Providers.GitLab.BaseURL)
	}
	if cfg.Provider != ProviderGitLab {
		t.Errorf("Provider = %q, want %q", cfg.Provider, ProviderGitLab)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "env-token")
	configPath := writeConfig(t, `
providers:
  gitlab:
    token: "file-token"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Providers.GitLab.Token != "env-token" {
		t.Errorf("GitLab.Token = %q, want %q", cfg.Providers.GitLab.Token, "env-token")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MRBOARD_PROVIDER", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Poll.IntervalSeconds != 30 {
		t.Errorf("Poll.IntervalSeconds = %d, want 30", cfg.Poll.IntervalSeconds)
	}
	if cfg.Review.MaxAgeDays != 14 {
		t.Errorf("Review.MaxAgeDays = %d, want 14", cfg.Review.MaxAgeDays)
	}
	if cfg.Scoring.BotUsername != "nomadic-margebot" {
		t.Errorf("Scoring.BotUsername = %q", cfg.Scoring.BotUsername)
	}
	if cfg.Providers.GitLab.AuthMethod != AuthBearer {
		t.Errorf("GitLab.AuthMethod = %q, want %q", cfg.Providers.GitLab.AuthMethod, AuthBearer)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "poll: [unclosed")
	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"gitlab with token", func(c *Config) { c.Providers.GitLab.Token = "t" }, nil},
		{"gitlab without token", func(c *Config) {}, ErrMissingToken},
		{"github without token", func(c *Config) { c.Provider = ProviderGitHub }, ErrMissingToken},
		{"github with token", func(c *Config) {
			c.Provider = ProviderGitHub
			c.Providers.GitHub.Token = "t"
		}, nil},
		{"unknown provider", func(c *Config) { c.Provider = "bitbucket" }, ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.GitLab.Token = "t"
	cfg.Providers.GitLab.AuthMethod = "basic"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for unknown auth method")
	}

	cfg = DefaultConfig()
	cfg.Providers.GitLab.Token = "t"
	cfg.Poll.IntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for zero interval")
	}
}
