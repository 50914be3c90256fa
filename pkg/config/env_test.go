package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", GetEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_STRING_UNSET", "default"))

	t.Setenv("TEST_STRING_EMPTY", "")
	assert.Equal(t, "default", GetEnvString("TEST_STRING_EMPTY", "default"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("TEST_INT", 7))

	t.Setenv("TEST_INT_NEG", "-3")
	assert.Equal(t, -3, GetEnvInt("TEST_INT_NEG", 7))

	t.Setenv("TEST_INT_BAD", "forty-two")
	assert.Equal(t, 7, GetEnvInt("TEST_INT_BAD", 7))

	assert.Equal(t, 7, GetEnvInt("TEST_INT_UNSET", 7))
}

func TestGetEnvInt64(t *testing.T) {
	// Telegram chat IDs for channels exceed 32 bits.
	t.Setenv("TEST_INT64", "-1001234567890")
	assert.Equal(t, int64(-1001234567890), GetEnvInt64("TEST_INT64", 0))

	t.Setenv("TEST_INT64_BAD", "chat")
	assert.Equal(t, int64(5), GetEnvInt64("TEST_INT64_BAD", 5))
}

func TestGetEnvFloat64(t *testing.T) {
	t.Setenv("TEST_FLOAT", "-0.3")
	assert.Equal(t, -0.3, GetEnvFloat64("TEST_FLOAT", 0.5))

	t.Setenv("TEST_FLOAT_BAD", "half")
	assert.Equal(t, 0.5, GetEnvFloat64("TEST_FLOAT_BAD", 0.5))

	assert.Equal(t, 0.5, GetEnvFloat64("TEST_FLOAT_UNSET", 0.5))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"t", true},
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"0", false},
		{"f", false},
		{"false", false},
		{"FALSE", false},
		{"False", false},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.value)
		assert.Equal(t, tt.want, GetEnvBool("TEST_BOOL", !tt.want), "value %q", tt.value)
	}

	t.Setenv("TEST_BOOL", "yes")
	assert.True(t, GetEnvBool("TEST_BOOL", true))
	assert.False(t, GetEnvBool("TEST_BOOL_UNSET", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "1h30m")
	assert.Equal(t, 90*time.Minute, GetEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION_BAD", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("TEST_DURATION_BAD", time.Second))

	assert.Equal(t, time.Second, GetEnvDuration("TEST_DURATION_UNSET", time.Second))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("TEST_LIST", "a, b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvStringList("TEST_LIST", nil))

	t.Setenv("TEST_LIST_BLANKS", " , ,")
	assert.Equal(t, []string{"x"}, GetEnvStringList("TEST_LIST_BLANKS", []string{"x"}))

	assert.Equal(t, []string{"x"}, GetEnvStringList("TEST_LIST_UNSET", []string{"x"}))
}
