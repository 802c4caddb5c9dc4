package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadPlanningDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLANNING_DEFAULT_PAGE_SIZE", "")
	t.Setenv("CALENDAR_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 50, cfg.Planning.DefaultPageSize)
	assert.Equal(t, 500, cfg.Planning.MaxPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Planning.CalendarCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Planner.Timeout)
	assert.Equal(t, "./exports", cfg.Exports.StorageDir)
	assert.Equal(t, 24*time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 3, cfg.Exports.WorkerRetries)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLANNING_DEFAULT_PAGE_SIZE", "25")
	t.Setenv("PLANNING_MAX_PAGE_SIZE", "10")
	t.Setenv("CALENDAR_CACHE_TTL", "bogus")
	t.Setenv("PLANNER_API_URL", "http://planner.local/api/v1/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Planning.DefaultPageSize)
	assert.Equal(t, 25, cfg.Planning.MaxPageSize)
	assert.Equal(t, 5*time.Minute, cfg.Planning.CalendarCacheTTL)
	assert.Equal(t, "http://planner.local/api/v1", cfg.Planner.APIURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
