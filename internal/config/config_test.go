package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.AMQPExchange != "odonto" {
		t.Errorf("AMQPExchange = %q, want odonto", cfg.AMQPExchange)
	}
	if cfg.AMQPQueue != "registro_rate" {
		t.Errorf("AMQPQueue = %q, want registro_rate", cfg.AMQPQueue)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_ENTRIES", "50")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.CacheEntries != 50 {
		t.Errorf("CacheEntries = %d, want 50", cfg.CacheEntries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "http" },
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "invalid port",
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.DataBackend = "postgres" },
			wantErr: "invalid data backend",
		},
		{
			name:    "bad AMQP scheme",
			mutate:  func(c *Config) { c.AMQPURL = "http://localhost" },
			wantErr: "invalid AMQP URL scheme",
		},
		{
			name:    "AMQP without queue",
			mutate:  func(c *Config) { c.AMQPQueue = "" },
			wantErr: "queue name cannot be empty",
		},
		{
			name:    "reminder recipient without SMTP",
			mutate:  func(c *Config) { c.ReminderRecipient = "studio@example.com" },
			wantErr: "SMTP host is required",
		},
		{
			name: "reminder recipient without at-sign",
			mutate: func(c *Config) {
				c.ReminderRecipient = "studio"
				c.SMTPHost = "smtp.example.com"
				c.SenderEmail = "noreply@example.com"
			},
			wantErr: "invalid reminder recipient",
		},
		{
			name:    "cache TTL too small",
			mutate:  func(c *Config) { c.CacheTTL = 10 * time.Millisecond },
			wantErr: "invalid cache TTL",
		},
		{
			name:    "cache entries zero",
			mutate:  func(c *Config) { c.CacheEntries = 0 },
			wantErr: "invalid cache entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			cfg.SQLiteDBPath = t.TempDir() + "/odonto.db"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
