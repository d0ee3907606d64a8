package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingToken indicates no API token is configured for the selected provider.
	ErrMissingToken = errors.New("missing API token")
	// ErrMissingUsername indicates no username was given on the command line.
	ErrMissingUsername = errors.New("missing username")
	// ErrUnknownProvider indicates the provider name is not supported.
	ErrUnknownProvider = errors.New("unknown provider")
)

const (
	ProviderGitLab = "gitlab"
	ProviderGitHub = "github"

	AuthBearer       = "bearer"
	AuthPrivateToken = "private_token"
)

// Config represents the dashboard configuration.
type Config struct {
	Provider  string          `yaml:"provider"`
	Providers ProvidersConfig `yaml:"providers"`
	Poll      PollConfig      `yaml:"poll"`
	Review    ReviewConfig    `yaml:"review"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Display   DisplayConfig   `yaml:"display"`
	Logging   LoggingConfig   `yaml:"logging"`
	Status    StatusConfig    `yaml:"status"`
}

// ProvidersConfig holds git provider configurations.
type ProvidersConfig struct {
	GitHub GitHubConfig `yaml:"github"`
	GitLab GitLabConfig `yaml:"gitlab"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	BaseURL    string `yaml:"base_url"`
	AuthMethod string `yaml:"auth_method"`
	Token      string `yaml:"token"`
}

// GitHubConfig holds GitHub-specific settings.
type GitHubConfig struct {
	BaseURL           string `yaml:"base_url"`
	Token             string `yaml:"token"`
	RequiredApprovals int    `yaml:"required_approvals"`
}

// PollConfig controls the refresh loop.
type PollConfig struct {
	IntervalSeconds       int  `yaml:"interval_seconds"`
	RequestTimeoutSeconds int  `yaml:"request_timeout_seconds"`
	Concurrency           int  `yaml:"concurrency"`
	ExitOnError           bool `yaml:"exit_on_error"`
}

// ReviewConfig controls the review-request source.
type ReviewConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

// ScoringConfig holds the names the priority rules refer to.
type ScoringConfig struct {
	BotUsername  string   `yaml:"bot_username"`
	MainBranches []string `yaml:"main_branches"`
}

// DisplayConfig holds table settings.
type DisplayConfig struct {
	ReferenceWidth int  `yaml:"reference_width"`
	AuthorWidth    int  `yaml:"author_width"`
	AssigneeWidth  int  `yaml:"assignee_width"`
	TitleWidth     int  `yaml:"title_width"`
	Hyperlinks     bool `yaml:"hyperlinks"`
	Color          bool `yaml:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// StatusConfig holds the optional local status endpoint.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGitLab,
		Providers: ProvidersConfig{
			GitLab: GitLabConfig{
				BaseURL:    "https://gitlab.com",
				AuthMethod: AuthBearer,
			},
			GitHub: GitHubConfig{
				RequiredApprovals: 1,
			},
		},
		Poll: PollConfig{
			IntervalSeconds:       30,
			RequestTimeoutSeconds: 15,
			Concurrency:           4,
		},
		Review: ReviewConfig{
			MaxAgeDays: 14,
		},
		Scoring: ScoringConfig{
			BotUsername:  "nomadic-margebot",
			MainBranches: []string{"main", "master"},
		},
		Display: DisplayConfig{
			ReferenceWidth: 25,
			AuthorWidth:    15,
			AssigneeWidth:  15,
			TitleWidth:     40,
			Hyperlinks:     true,
			Color:          true,
		},
		Logging: LoggingConfig{
			Dir:           defaultLogDir(),
			RetentionDays: 30,
		},
	}
}

func defaultLogDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mrboard", "logs")
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Substitute environment variables
		data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
			varName := envVarPattern.FindSubmatch(match)[1]
			return []byte(os.Getenv(string(varName)))
		})

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envOverrides lists the variables that override the config file.
type envOverrides struct {
	Provider    string `env:"MRBOARD_PROVIDER"`
	GitLabURL   string `env:"GITLAB_URL"`
	GitLabToken string `env:"GITLAB_TOKEN"`
	GitHubURL   string `env:"GITHUB_URL"`
	GitHubToken string `env:"GITHUB_TOKEN"`
}

// applyEnv overlays non-empty environment variables onto cfg.
// A variable that is set but empty leaves the file value in place.
func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := cleanenv.ReadEnv(&env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	override(&cfg.Provider, env.Provider)
	override(&cfg.Providers.GitLab.BaseURL, env.GitLabURL)
	override(&cfg.Providers.GitLab.Token, env.GitLabToken)
	override(&cfg.Providers.GitHub.BaseURL, env.GitHubURL)
	override(&cfg.Providers.GitHub.Token, env.GitHubToken)
	return nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Validate checks that the selected provider is usable.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGitLab:
		if c.Providers.GitLab.Token == "" {
			return fmt.Errorf("%w: set GITLAB_TOKEN", ErrMissingToken)
		}
		switch c.Providers.GitLab.AuthMethod {
		case AuthBearer, AuthPrivateToken:
		default:
			return fmt.Errorf("unknown gitlab auth_method: %q", c.Providers.GitLab.AuthMethod)
		}
	case ProviderGitHub:
		if c.Providers.GitHub.Token == "" {
			return fmt.Errorf("%w: set GITHUB_TOKEN", ErrMissingToken)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be positive, got %d", c.Poll.IntervalSeconds)
	}
	return nil
}

// PollInterval returns the delay between ticks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request timeout, or 0 for none.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Poll.RequestTimeoutSeconds) * time.Second
}
