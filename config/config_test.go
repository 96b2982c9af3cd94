package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, "labres.db", cfg.Database.DSN)
	assert.Equal(t, 0, cfg.Booking.ClosedWeekday)
	assert.Equal(t, 7, cfg.Booking.MaxSpanDays)
	assert.Equal(t, time.Hour, cfg.Booking.MinDuration)
	require.NotNil(t, cfg.Booking.Location)
	assert.Equal(t, "Asia/Kolkata", cfg.Booking.Location.String())
	assert.Equal(t, 60*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 90, cfg.Retention.NotificationDays)
	assert.Equal(t, "0 3 * * *", cfg.Retention.Schedule)
}

func TestLoadCacheTTL(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want int
	}{
		{name: "absent takes the default", yaml: "server:\n  port: 9090\n", want: 30},
		{name: "minus one disables caching", yaml: "server:\n  cache_ttl_seconds: -1\n", want: -1},
		{name: "explicit value sticks", yaml: "server:\n  cache_ttl_seconds: 5\n", want: 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))

			cfg, err := Load(path)

			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.Server.CacheTTLSeconds)
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  dsn: file.db\nauth:\n  jwt_secret: file-secret\n"), 0o644))
	t.Setenv("DATABASE_DSN", "postgres://db.internal/labres")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "postgres://db.internal/labres", cfg.Database.DSN)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}
