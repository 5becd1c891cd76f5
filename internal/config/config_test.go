package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("DB_HOST", "localhost")
	v.Set("DB_USER", "befriend")
	v.Set("DB_NAME", "befriend")
	v.Set("FIREBASE_PROJECT_ID", "befriend-dev")
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(baseViper())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, StoreBackendPostgres, cfg.Store)
	assert.Equal(t, AuthModeFirebase, cfg.Auth.Mode)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Discover.CacheTTL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "befriend-dev", cfg.Firestore.ProjectID)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
}

func TestFromViperValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "missing db host",
			mutate:  func(v *viper.Viper) { v.Set("DB_HOST", "") },
			wantErr: "database host is required",
		},
		{
			name:    "unknown store",
			mutate:  func(v *viper.Viper) { v.Set("STORE_BACKEND", "mongo") },
			wantErr: `unknown store backend "mongo"`,
		},
		{
			name: "firestore without project",
			mutate: func(v *viper.Viper) {
				v.Set("STORE_BACKEND", "firestore")
				v.Set("AUTH_MODE", "hmac")
				v.Set("AUTH_HMAC_SECRET", "0123456789abcdef0123456789abcdef")
				v.Set("FIREBASE_PROJECT_ID", "")
			},
			wantErr: "firestore project id is required",
		},
		{
			name: "short hmac secret",
			mutate: func(v *viper.Viper) {
				v.Set("AUTH_MODE", "hmac")
				v.Set("AUTH_HMAC_SECRET", "short")
			},
			wantErr: "HMAC auth secret must be at least 32 characters",
		},
		{
			name:    "firebase without project",
			mutate:  func(v *viper.Viper) { v.Set("FIREBASE_PROJECT_ID", "") },
			wantErr: "firebase project id is required",
		},
		{
			name:    "zero rate",
			mutate:  func(v *viper.Viper) { v.Set("DISCOVER_RATE_PER_MIN", 0) },
			wantErr: "discover rate limit must be positive",
		},
		{
			name: "zero cache ttl with redis",
			mutate: func(v *viper.Viper) {
				v.Set("REDIS_ENABLED", true)
				v.Set("DISCOVER_CACHE_TTL", "0s")
			},
			wantErr: "discover cache ttl must be positive when redis is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper()
			tt.mutate(v)
			_, err := FromViper(v)
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestFromViperZeroCacheTTLWithoutRedis(t *testing.T) {
	v := baseViper()
	v.Set("DISCOVER_CACHE_TTL", "0s")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Zero(t, cfg.Discover.CacheTTL)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
