package portalauth

import "testing"

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://auth.litspark.internal"
	return cfg
}

func TestDefaultConfigValidatesWithBaseURL(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base URL", func(c *Config) { c.API.BaseURL = "" }},
		{"malformed base URL", func(c *Config) { c.API.BaseURL = "not a url" }},
		{"negative request timeout", func(c *Config) { c.API.RequestTimeout = -1 }},
		{"missing redis prefix", func(c *Config) { c.Session.RedisPrefix = "" }},
		{"negative expiry skew", func(c *Config) { c.Session.ExpirySkew = -1 }},
		{"negative audit buffer", func(c *Config) { c.Audit.BufferSize = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuilderConfigIsCopied(t *testing.T) {
	cfg := validTestConfig()
	b := New().WithConfig(cfg)

	cfg.Session.RedisPrefix = "tampered"

	if b.config.Session.RedisPrefix != "litspark" {
		t.Fatalf("builder must hold its own copy, got %q", b.config.Session.RedisPrefix)
	}
}
