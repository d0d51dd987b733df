package maintenance

// Evaluate classifies an equipment-schedule pair by pure arithmetic. Overdue
// strictly dominates: once current hours pass the due threshold the warning
// and critical bands are irrelevant. Non-positive thresholds fall back to the
// defaults rather than failing.
func Evaluate(currentHours, nextDueHours, warningThreshold, criticalThreshold float64) Evaluation {
	if warningThreshold <= 0 {
		warningThreshold = DefaultWarningThreshold
	}
	if criticalThreshold <= 0 {
		criticalThreshold = DefaultCriticalThreshold
	}
	eval := Evaluation{
		HoursUntilDue: nextDueHours - currentHours,
	}
	if overdue := currentHours - nextDueHours; overdue > 0 {
		eval.HoursOverdue = overdue
	}
	switch {
	case eval.HoursOverdue > 0:
		eval.Urgency = UrgencyOverdue
	case eval.HoursUntilDue <= criticalThreshold:
		eval.Urgency = UrgencyCritical
	case eval.HoursUntilDue <= warningThreshold:
		eval.Urgency = UrgencyWarning
	default:
		eval.Urgency = UrgencyNone
	}
	return eval
}
