package eskimo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
)

// tokenResponse is the OAuth password-grant response from the remote system
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// SessionProvider obtains and caches the bearer token for the remote EPOS
// API. Tokens are cached until shortly before expiry; a call that finds no
// cached token authenticates with the password grant.
type SessionProvider struct {
	client      *resty.Client
	cache       sync.TokenCache
	username    string
	password    string
	fallbackTTL time.Duration
	logger      *zap.Logger
}

// NewSessionProvider creates a session provider against the configured remote
func NewSessionProvider(cfg config.EskimoConfig, cache sync.TokenCache, logger *zap.Logger) *SessionProvider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout)

	return &SessionProvider{
		client:      client,
		cache:       cache,
		username:    cfg.Username,
		password:    cfg.Password,
		fallbackTTL: cfg.TokenTTL,
		logger:      logger.Named("eskimo.auth"),
	}
}

// Token returns a valid bearer token, authenticating if the cache is empty
func (p *SessionProvider) Token(ctx context.Context) (string, error) {
	token, err := p.cache.Get(ctx)
	if err != nil {
		p.logger.Warn("token cache read failed", zap.Error(err))
	}
	if token != "" {
		return token, nil
	}
	return p.authenticate(ctx)
}

// Invalidate drops the cached token so the next call re-authenticates. Called
// when the remote rejects a request with 401.
func (p *SessionProvider) Invalidate(ctx context.Context) {
	if err := p.cache.Clear(ctx); err != nil {
		p.logger.Warn("token cache clear failed", zap.Error(err))
	}
}

// authenticate performs the password grant and caches the token
func (p *SessionProvider) authenticate(ctx context.Context) (string, error) {
	if p.username == "" || p.password == "" {
		return "", fmt.Errorf("%w: missing credentials", sync.ErrAuth)
	}

	var body tokenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   p.username,
			"password":   p.password,
		}).
		SetResult(&body).
		Post("/token")
	if err != nil {
		return "", fmt.Errorf("%w: %v", sync.ErrConnect, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: token endpoint returned %d", sync.ErrAuth, resp.StatusCode())
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access_token", sync.ErrAuth)
	}

	ttl := p.fallbackTTL
	if body.ExpiresIn > 0 {
		ttl = time.Duration(body.ExpiresIn) * time.Second
	}
	// Refresh a minute early so in-flight calls never carry a stale token
	if ttl > 2*time.Minute {
		ttl -= time.Minute
	}

	if err := p.cache.Set(ctx, body.AccessToken, ttl); err != nil {
		p.logger.Warn("token cache write failed", zap.Error(err))
	}

	p.logger.Debug("authenticated against remote system", zap.Duration("ttl", ttl))
	return body.AccessToken, nil
}
