package portalauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/litspark/portalauth/api"
	"github.com/litspark/portalauth/session"
)

// Builder assembles a [Manager]. Construction is allocation-only until
// Build, which validates the configuration and performs the one-time
// session restore from durable storage.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	http   *http.Client

	auditSink AuditSink

	built bool
}

// New returns a [Builder] preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the remote authentication API base URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithRedis sets the client backing the durable session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the HTTP client used for API calls. When unset,
// a client honoring Config.API.RequestTimeout is used.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.http = client
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authenticated-call latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, assembles the [Manager], and restores
// any persisted session. A stored session is adopted optimistically without
// server validation (see [Manager] restore semantics).
func (b *Builder) Build(ctx context.Context) (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := b.http
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.API.RequestTimeout}
	}

	m := &Manager{
		config:  cfg,
		api:     api.NewClient(cfg.API.BaseURL, httpClient),
		store:   session.NewStore(b.redis, cfg.Session.RedisPrefix),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	if err := m.restore(ctx); err != nil {
		m.Close()
		return nil, err
	}

	b.built = true

	return m, nil
}
