package maintenance

import "time"

// frequencyWindow returns the minimum gap between alerts for a policy, or
// false for "once" which never repeats.
func frequencyWindow(frequency string) (time.Duration, bool) {
	switch frequency {
	case FrequencyOnce:
		return 0, false
	case FrequencyWeekly:
		return 168 * time.Hour, true
	case FrequencyDaily:
		return 24 * time.Hour, true
	default:
		return 24 * time.Hour, true
	}
}

// ShouldSend decides whether a qualifying urgency may actually trigger an
// email. Pure given its inputs; the scheduler advances state by recording
// lastEmailSent after a confirmed send.
func ShouldSend(alertsEnabled bool, frequency string, lastEmailSent *time.Time, now time.Time) bool {
	if !alertsEnabled {
		return false
	}
	if lastEmailSent == nil {
		return true
	}
	window, repeats := frequencyWindow(frequency)
	if !repeats {
		return false
	}
	return now.Sub(*lastEmailSent) >= window
}
