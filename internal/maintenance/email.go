package maintenance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sathish136/automationhub-sub003/internal/storage"
)

// AlertEmail is the deterministic rendering of one alert. Building it performs
// no I/O and never fails; optional schedule fields degrade to omitted lines.
type AlertEmail struct {
	Subject string
	Body    string
}

func RenderAlert(eq storage.Equipment, sched storage.MaintenanceSchedule, eval Evaluation, now time.Time) AlertEmail {
	return AlertEmail{
		Subject: renderSubject(eq, sched, eval),
		Body:    renderBody(eq, sched, eval, now),
	}
}

func renderSubject(eq storage.Equipment, sched storage.MaintenanceSchedule, eval Evaluation) string {
	switch eval.Urgency {
	case UrgencyOverdue:
		return fmt.Sprintf("OVERDUE: %s maintenance required for %s (%s over)", sched.MaintenanceType, eq.Name, formatHours(eval.HoursOverdue))
	case UrgencyCritical:
		return fmt.Sprintf("CRITICAL: %s maintenance due for %s within %s hours", sched.MaintenanceType, eq.Name, formatHours(eval.HoursUntilDue))
	case UrgencyWarning:
		return fmt.Sprintf("Maintenance due soon: %s for %s", sched.MaintenanceType, eq.Name)
	default:
		return fmt.Sprintf("Maintenance reminder: %s for %s", sched.MaintenanceType, eq.Name)
	}
}

func renderBody(eq storage.Equipment, sched storage.MaintenanceSchedule, eval Evaluation, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Equipment: %s\n", eq.Name)
	if eq.EquipmentType != "" {
		fmt.Fprintf(&b, "Type: %s\n", eq.EquipmentType)
	}
	fmt.Fprintf(&b, "Maintenance: %s\n", sched.MaintenanceType)
	fmt.Fprintf(&b, "Current running hours: %s\n", formatHours(eq.CurrentRunningHours))
	fmt.Fprintf(&b, "Due at hours: %s\n", formatHours(sched.NextDueHours))
	if eval.HoursOverdue > 0 {
		fmt.Fprintf(&b, "Hours overdue: %s\n", formatHours(eval.HoursOverdue))
	} else {
		fmt.Fprintf(&b, "Hours until due: %s\n", formatHours(eval.HoursUntilDue))
	}
	if sched.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", sched.Priority)
	}
	if sched.Instructions != "" {
		fmt.Fprintf(&b, "\nInstructions:\n%s\n", sched.Instructions)
	}
	if len(sched.RequiredParts) > 0 {
		b.WriteString("\nRequired parts:\n")
		for _, part := range sched.RequiredParts {
			fmt.Fprintf(&b, "  - %s\n", part)
		}
	}
	fmt.Fprintf(&b, "\nGenerated at %s\n", now.UTC().Format(time.RFC1123))
	return b.String()
}

// formatHours renders an hour count with thousands grouping and one decimal,
// e.g. 12520.5 -> "12,520.5".
func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', 1, 64)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
