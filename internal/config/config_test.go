package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derender-backend/internal/config"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "test-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "makeup-images", cfg.SupabaseStorageBucket)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.GeminiModel)
}

func TestValidate_RequiresSupabaseSettings(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")

	cfg.SupabaseURL = "https://example.supabase.co"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_PUBLISHABLE_KEY")

	cfg.SupabasePublishableKey = "test-key"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_GeminiKeyIsOptional(t *testing.T) {
	cfg := &config.Config{
		SupabaseURL:            "https://example.supabase.co",
		SupabasePublishableKey: "test-key",
	}
	assert.NoError(t, cfg.Validate())
}
