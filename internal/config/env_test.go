package config

import (
	"testing"
	"time"
)

func TestAddr(t *testing.T) {
	t.Setenv("MOTIONSENSE_ADDR", "")
	if got := Addr(); got != DefaultAddr {
		t.Errorf("Addr() = %q, want %q", got, DefaultAddr)
	}
	t.Setenv("MOTIONSENSE_ADDR", ":9999")
	if got := Addr(); got != ":9999" {
		t.Errorf("Addr() = %q, want :9999", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("MS_TEST_FLOAT", "0.35")
	if got := Float("MS_TEST_FLOAT", 1); got != 0.35 {
		t.Errorf("Float() = %v, want 0.35", got)
	}
	t.Setenv("MS_TEST_FLOAT", "abc")
	if got := Float("MS_TEST_FLOAT", 1); got != 1 {
		t.Errorf("malformed Float() = %v, want default 1", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("MS_TEST_DURATION", "750ms")
	if got := Duration("MS_TEST_DURATION", time.Second); got != 750*time.Millisecond {
		t.Errorf("Duration() = %v, want 750ms", got)
	}
	t.Setenv("MS_TEST_DURATION", "")
	if got := Duration("MS_TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("unset Duration() = %v, want 1s", got)
	}
}
