package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("KORA_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("KORA_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("KORA_TEST_MISSING", "fallback"))

	t.Setenv("KORA_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("KORA_TEST_EMPTY", "fallback"))
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("KORA_TEST_TIMEOUT", "45s")
	assert.Equal(t, 45*time.Second, GetDurationEnv("KORA_TEST_TIMEOUT", time.Minute))

	t.Setenv("KORA_TEST_TIMEOUT", "not-a-duration")
	assert.Equal(t, time.Minute, GetDurationEnv("KORA_TEST_TIMEOUT", time.Minute))
}

func TestIsProduction(t *testing.T) {
	t.Setenv("ENV", "development")
	assert.False(t, IsProduction())

	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())
}
