package maintenance

import (
	"strings"
	"testing"
	"time"

	"github.com/sathish136/automationhub-sub003/internal/storage"
)

func testEquipment() storage.Equipment {
	return storage.Equipment{
		ID:                  1,
		Name:                "Compressor 3",
		EquipmentType:       "compressor",
		CurrentRunningHours: 12520.5,
		Recipients:          []string{"ops@example.com"},
	}
}

func testSchedule() storage.MaintenanceSchedule {
	return storage.MaintenanceSchedule{
		ID:              7,
		EquipmentID:     1,
		MaintenanceType: "oil change",
		NextDueHours:    12500,
		Priority:        "high",
	}
}

func TestRenderAlertSubjectByUrgency(t *testing.T) {
	eq := testEquipment()
	sched := testSchedule()
	now := time.Now()
	cases := []struct {
		urgency Urgency
		prefix  string
	}{
		{UrgencyOverdue, "OVERDUE:"},
		{UrgencyCritical, "CRITICAL:"},
		{UrgencyWarning, "Maintenance due soon:"},
		{UrgencyNone, "Maintenance reminder:"},
	}
	for _, tc := range cases {
		email := RenderAlert(eq, sched, Evaluation{Urgency: tc.urgency, HoursOverdue: 20.5, HoursUntilDue: 40}, now)
		if !strings.HasPrefix(email.Subject, tc.prefix) {
			t.Errorf("urgency %s: subject %q missing prefix %q", tc.urgency, email.Subject, tc.prefix)
		}
		if !strings.Contains(email.Subject, "Compressor 3") {
			t.Errorf("urgency %s: subject %q missing equipment name", tc.urgency, email.Subject)
		}
	}
}

func TestRenderAlertBodyContent(t *testing.T) {
	eq := testEquipment()
	sched := testSchedule()
	sched.Instructions = "Drain and refill per manual section 4."
	sched.RequiredParts = []string{"10W-40 oil", "filter F-220"}
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	email := RenderAlert(eq, sched, Evaluate(eq.CurrentRunningHours, sched.NextDueHours, 100, 50), now)
	for _, want := range []string{
		"Equipment: Compressor 3",
		"Type: compressor",
		"Maintenance: oil change",
		"Current running hours: 12,520.5",
		"Due at hours: 12,500.0",
		"Hours overdue: 20.5",
		"Priority: high",
		"Drain and refill per manual section 4.",
		"- filter F-220",
	} {
		if !strings.Contains(email.Body, want) {
			t.Errorf("body missing %q:\n%s", want, email.Body)
		}
	}
}

func TestRenderAlertOmitsMissingOptionalFields(t *testing.T) {
	eq := testEquipment()
	eq.EquipmentType = ""
	sched := testSchedule()
	sched.Priority = ""

	email := RenderAlert(eq, sched, Evaluation{Urgency: UrgencyWarning, HoursUntilDue: 80}, time.Now())
	if strings.Contains(email.Body, "Type:") {
		t.Error("expected Type line to be omitted")
	}
	if strings.Contains(email.Body, "Priority:") {
		t.Error("expected Priority line to be omitted")
	}
	if strings.Contains(email.Body, "Instructions:") {
		t.Error("expected Instructions section to be omitted")
	}
	if strings.Contains(email.Body, "Required parts:") {
		t.Error("expected parts section to be omitted")
	}
}

func TestRenderAlertZeroValuesDoNotPanic(t *testing.T) {
	email := RenderAlert(storage.Equipment{}, storage.MaintenanceSchedule{}, Evaluation{}, time.Time{})
	if email.Subject == "" || email.Body == "" {
		t.Fatal("expected non-empty subject and body for zero-value input")
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{999, "999.0"},
		{1000, "1,000.0"},
		{12520.5, "12,520.5"},
		{1234567.89, "1,234,567.9"},
		{-4200, "-4,200.0"},
	}
	for _, tc := range cases {
		if got := formatHours(tc.in); got != tc.want {
			t.Errorf("formatHours(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
