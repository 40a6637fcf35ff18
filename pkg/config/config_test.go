package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 40.0, cfg.Reports.PassingThreshold)
	assert.Equal(t, 10, cfg.Reports.TopLimit)
	assert.Equal(t, 10*time.Second, cfg.Attendance.LockTTL)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 5000, cfg.Imports.MaxRows)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REPORTS_PASSING_THRESHOLD", 0)
	v.Set("ATTENDANCE_LOCK_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("BATCH_CACHE_TTL", "90s")

	cfg := fromViper(v)
	assert.Equal(t, 40.0, cfg.Reports.PassingThreshold)
	assert.Equal(t, 10*time.Second, cfg.Attendance.LockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.Batches.CacheTTL)
}
