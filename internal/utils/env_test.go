package utils

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 25 * time.Second},
		{"valid seconds", "60", time.Minute},
		{"garbage", "soon", 25 * time.Second},
		{"negative", "-5", 25 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_PING_INTERVAL", tt.value)
			}
			got := GetEnvDuration("TEST_PING_INTERVAL", 25*time.Second)
			if got != tt.want {
				t.Errorf("GetEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := GetEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt() = %d, want 42", got)
	}
	if got := GetEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("GetEnvInt() default = %d, want 7", got)
	}
}
