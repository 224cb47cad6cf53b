package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEA_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, "huggingface", cfg.SimilarityProvider)
	require.Equal(t, 10*time.Second, cfg.SimilarityTimeout)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.Equal(t, BadgeDispatchGoroutine, cfg.BadgeDispatch)
	require.Equal(t, 30, cfg.GradingRateLimit)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("MEA_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadCapsSimilarityTimeout(t *testing.T) {
	t.Setenv("MEA_JWT_SECRET", "secret")
	t.Setenv("MEA_SIMILARITY_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.SimilarityTimeout)
}

func TestLoadNATSDispatchNeedsURL(t *testing.T) {
	t.Setenv("MEA_JWT_SECRET", "secret")
	t.Setenv("MEA_BADGE_DISPATCH", "nats")
	t.Setenv("MEA_NATS_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("MEA_JWT_SECRET", "secret")
	t.Setenv("MEA_CACHE_PROGRESS_TTL", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "cache.progress_ttl")
}
