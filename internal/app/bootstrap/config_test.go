package bootstrap

import (
	"testing"
	"time"
)

func TestParseTimeouts(t *testing.T) {
	appCfg := AppConfig{
		TimeoutPing:   "2s",
		TimeoutShort:  "5s",
		TimeoutMedium: "10s",
		TimeoutLong:   "1m30s",
	}

	durs, err := parseTimeouts(appCfg)
	if err != nil {
		t.Fatalf("parseTimeouts failed: %v", err)
	}

	want := [4]time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second, 90 * time.Second}
	if durs != want {
		t.Errorf("expected %v, got %v", want, durs)
	}
}

func TestParseTimeoutsRejectsBadValue(t *testing.T) {
	appCfg := AppConfig{
		TimeoutPing:   "2s",
		TimeoutShort:  "not-a-duration",
		TimeoutMedium: "10s",
		TimeoutLong:   "30s",
	}

	if _, err := parseTimeouts(appCfg); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
