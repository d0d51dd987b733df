package maintenance

// Urgency classifies how close an equipment-schedule pair is to its
// maintenance threshold. Derived on every pass, never persisted.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
	UrgencyOverdue  Urgency = "overdue"
)

// Threshold offsets applied when a schedule stores no usable value.
const (
	DefaultWarningThreshold  = 100.0
	DefaultCriticalThreshold = 50.0
)

// Recognized email frequency policies. Anything else is treated as daily.
const (
	FrequencyOnce   = "once"
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Evaluation is the result of classifying one equipment-schedule pair.
type Evaluation struct {
	Urgency       Urgency
	HoursUntilDue float64
	HoursOverdue  float64
}
