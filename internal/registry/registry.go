package registry

import (
	"fmt"
	"net/http"

	"github.com/drewdunne/mrboard/internal/config"
	"github.com/drewdunne/mrboard/internal/provider"
	"github.com/drewdunne/mrboard/internal/provider/github"
	"github.com/drewdunne/mrboard/internal/provider/gitlab"
)

// Registry manages provider instances.
type Registry struct {
	providers map[string]provider.Provider
}

// New creates a new provider registry from config. Every provider with a
// token is built, so the selected one can be looked up by name.
func New(cfg *config.Config) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]provider.Provider),
	}

	if gh := cfg.Providers.GitHub; gh.Token != "" {
		opts := []github.Option{
			github.WithTimeout(cfg.RequestTimeout()),
			github.WithRequiredApprovals(gh.RequiredApprovals),
		}
		if gh.BaseURL != "" {
			opts = append(opts, github.WithBaseURL(gh.BaseURL))
		}
		r.providers[config.ProviderGitHub] = github.New(gh.Token, opts...)
	}

	if gl := cfg.Providers.GitLab; gl.Token != "" {
		opts := []gitlab.Option{
			gitlab.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		}
		if gl.BaseURL != "" {
			opts = append(opts, gitlab.WithBaseURL(gl.BaseURL))
		}
		if gl.AuthMethod != config.AuthPrivateToken {
			opts = append(opts, gitlab.WithBearerAuth())
		}
		p, err := gitlab.New(gl.Token, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating gitlab provider: %w", err)
		}
		r.providers[config.ProviderGitLab] = p
	}

	return r, nil
}

// Get returns the provider for the given name, or nil if not configured.
func (r *Registry) Get(name string) provider.Provider {
	return r.providers[name]
}

// Selected returns the provider named by cfg.Provider.
func (r *Registry) Selected(cfg *config.Config) (provider.Provider, error) {
	p := r.Get(cfg.Provider)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", config.ErrMissingToken, cfg.Provider)
	}
	return p, nil
}

// List returns all configured provider names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
