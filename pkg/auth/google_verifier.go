package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"recipe-share-api/domain"
	"recipe-share-api/internal/logging"
	"recipe-share-api/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

const GoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type (
	GoogleVerifier interface {
		Verify(ctx context.Context, idToken string) (*domain.GoogleProfile, error)
	}

	GoogleConfig struct {
		TokenInfoURL string
		// Audiences lists the accepted client ids. Empty accepts any audience.
		Audiences []string
		Timeout   time.Duration
	}

	googleVerifier struct {
		cfg    GoogleConfig
		client *http.Client
		cb     *gobreaker.CircuitBreaker[*domain.GoogleProfile]
	}

	tokenInfo struct {
		Aud     string `json:"aud"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
)

func NewGoogleVerifier(cfg GoogleConfig) GoogleVerifier {
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = GoogleTokenInfoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	name := "google-tokeninfo"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*domain.GoogleProfile](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a rejected token is a healthy answer from the provider
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrGoogleTokenRejected) || errors.Is(err, domain.ErrGoogleAudience)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &googleVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cb:     cb,
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*domain.GoogleProfile, error) {
	profile, err := v.cb.Execute(func() (*domain.GoogleProfile, error) {
		return v.fetch(ctx, idToken)
	})

	switch {
	case err == nil:
		metrics.GoogleVerifyTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.GoogleVerifyTotal.WithLabelValues("circuit_open").Inc()
	case errors.Is(err, domain.ErrGoogleTokenRejected), errors.Is(err, domain.ErrGoogleAudience):
		metrics.GoogleVerifyTotal.WithLabelValues("rejected").Inc()
	default:
		metrics.GoogleVerifyTotal.WithLabelValues("error").Inc()
	}
	return profile, err
}

func (v *googleVerifier) fetch(ctx context.Context, idToken string) (*domain.GoogleProfile, error) {
	endpoint := v.cfg.TokenInfoURL + "?" + url.Values{"id_token": {idToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build tokeninfo request")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call tokeninfo")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read tokeninfo")
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("tokeninfo returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrGoogleTokenRejected
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, errors.Wrap(err, "decode tokeninfo")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, domain.ErrGoogleTokenRejected
	}
	if len(v.cfg.Audiences) > 0 && !slices.Contains(v.cfg.Audiences, info.Aud) {
		return nil, domain.ErrGoogleAudience
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &domain.GoogleProfile{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    name,
		Picture: info.Picture,
	}, nil
}
