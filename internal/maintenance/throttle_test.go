package maintenance

import (
	"testing"
	"time"
)

func TestShouldSendFirstAlertAlwaysFires(t *testing.T) {
	now := time.Now()
	if !ShouldSend(true, FrequencyOnce, nil, now) {
		t.Fatal("expected first alert to fire for once policy")
	}
	if !ShouldSend(true, FrequencyDaily, nil, now) {
		t.Fatal("expected first alert to fire for daily policy")
	}
}

func TestShouldSendDisabled(t *testing.T) {
	if ShouldSend(false, FrequencyDaily, nil, time.Now()) {
		t.Fatal("expected no send when alerts are disabled")
	}
}

func TestShouldSendOnceNeverRepeats(t *testing.T) {
	now := time.Now()
	last := now.Add(-10 * 365 * 24 * time.Hour)
	if ShouldSend(true, FrequencyOnce, &last, now) {
		t.Fatal("once policy must never repeat after a recorded send")
	}
}

func TestShouldSendDailyWindow(t *testing.T) {
	now := time.Now()
	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{23*time.Hour + 54*time.Minute, false},
		{24 * time.Hour, true},
		{36 * time.Hour, true},
	}
	for _, tc := range cases {
		last := now.Add(-tc.elapsed)
		if got := ShouldSend(true, FrequencyDaily, &last, now); got != tc.want {
			t.Errorf("daily at elapsed %v = %v, want %v", tc.elapsed, got, tc.want)
		}
	}
}

func TestShouldSendWeeklyWindow(t *testing.T) {
	now := time.Now()
	last := now.Add(-167 * time.Hour)
	if ShouldSend(true, FrequencyWeekly, &last, now) {
		t.Fatal("expected no send at 167h for weekly policy")
	}
	last = now.Add(-168 * time.Hour)
	if !ShouldSend(true, FrequencyWeekly, &last, now) {
		t.Fatal("expected send at 168h for weekly policy")
	}
}

func TestShouldSendUnknownFrequencyTreatedAsDaily(t *testing.T) {
	now := time.Now()
	last := now.Add(-23 * time.Hour)
	if ShouldSend(true, "fortnightly", &last, now) {
		t.Fatal("expected unknown frequency to use the daily window")
	}
	last = now.Add(-25 * time.Hour)
	if !ShouldSend(true, "", &last, now) {
		t.Fatal("expected missing frequency to use the daily window")
	}
}
