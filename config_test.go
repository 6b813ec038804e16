package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigValidatesWithKeys(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.AccessKey = []byte("test-access-key-0123456789abcdef")
	cfg.Token.RefreshKey = []byte("test-refresh-key-0123456789abcde")

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with keys invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := defaultConfig()
		cfg.Token.AccessKey = []byte("test-access-key-0123456789abcdef")
		cfg.Token.RefreshKey = []byte("test-refresh-key-0123456789abcde")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short access key", func(c *Config) { c.Token.AccessKey = []byte("short") }},
		{"short refresh key", func(c *Config) { c.Token.RefreshKey = []byte("short") }},
		{"identical keys", func(c *Config) { c.Token.RefreshKey = c.Token.AccessKey }},
		{"zero access TTL", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"access TTL >= refresh TTL", func(c *Config) { c.Token.AccessTTL = c.Token.RefreshTTL }},
		{"refresh TTL over cap", func(c *Config) { c.Token.RefreshTTL = 31 * 24 * time.Hour }},
		{"zero lockout threshold", func(c *Config) { c.Lockout.Threshold = 0 }},
		{"zero lockout duration", func(c *Config) { c.Lockout.Duration = 0 }},
		{"empty mfa issuer", func(c *Config) { c.MFA.Issuer = "" }},
		{"zero enrollment TTL", func(c *Config) { c.MFA.EnrollmentTTL = 0 }},
		{"short password minimum", func(c *Config) { c.Password.MinLength = 6 }},
		{"audit on with zero buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
