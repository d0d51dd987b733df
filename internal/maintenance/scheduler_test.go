package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sathish136/automationhub-sub003/internal/storage"
)

type fakeRepo struct {
	equipment []storage.Equipment
	schedules map[int64][]storage.MaintenanceSchedule
	tags      map[int64]storage.PlcTag
	logs      []storage.MaintenanceEmailLog
	dueErr    error
}

func (f *fakeRepo) GetEquipmentDueForMaintenance(ctx context.Context) ([]storage.Equipment, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	due := []storage.Equipment{}
	for _, eq := range f.equipment {
		if eq.EnableEmailAlerts {
			due = append(due, eq)
		}
	}
	return due, nil
}

func (f *fakeRepo) ListEquipment(ctx context.Context) ([]storage.Equipment, error) {
	return append([]storage.Equipment{}, f.equipment...), nil
}

func (f *fakeRepo) GetEquipment(ctx context.Context, id int64) (storage.Equipment, error) {
	for _, eq := range f.equipment {
		if eq.ID == id {
			return eq, nil
		}
	}
	return storage.Equipment{}, storage.ErrNotFound
}

func (f *fakeRepo) UpdateEquipmentHours(ctx context.Context, id int64, hours float64, updatedAt time.Time) error {
	for i := range f.equipment {
		if f.equipment[i].ID == id {
			f.equipment[i].CurrentRunningHours = hours
			f.equipment[i].HoursUpdatedAt = updatedAt
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeRepo) GetMaintenanceSchedules(ctx context.Context, equipmentID int64) ([]storage.MaintenanceSchedule, error) {
	return append([]storage.MaintenanceSchedule{}, f.schedules[equipmentID]...), nil
}

func (f *fakeRepo) UpdateScheduleLastEmailSent(ctx context.Context, id int64, sentAt time.Time) error {
	for eqID := range f.schedules {
		for i := range f.schedules[eqID] {
			if f.schedules[eqID][i].ID == id {
				t := sentAt
				f.schedules[eqID][i].LastEmailSent = &t
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (f *fakeRepo) GetPlcTag(ctx context.Context, id int64) (storage.PlcTag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return storage.PlcTag{}, storage.ErrNotFound
	}
	return tag, nil
}

func (f *fakeRepo) CreateEmailLog(ctx context.Context, entry storage.MaintenanceEmailLog) error {
	f.logs = append(f.logs, entry)
	return nil
}

type sentMail struct {
	recipients []string
	subject    string
	body       string
}

type fakeMailer struct {
	sent    []sentMail
	failFor map[string]bool // keyed by first recipient
}

func (m *fakeMailer) SendAlert(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) > 0 && m.failFor[recipients[0]] {
		return errors.New("smtp refused")
	}
	m.sent = append(m.sent, sentMail{recipients: recipients, subject: subject, body: body})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func overdueFixture(now time.Time) *fakeRepo {
	return &fakeRepo{
		equipment: []storage.Equipment{{
			ID:                  1,
			Name:                "Compressor 3",
			Status:              "active",
			CurrentRunningHours: 520,
			HoursSource:         storage.HoursSourceCalculated,
			HoursUpdatedAt:      now,
			EnableEmailAlerts:   true,
			Recipients:          []string{"ops@example.com"},
		}},
		schedules: map[int64][]storage.MaintenanceSchedule{
			1: {{
				ID:                11,
				EquipmentID:       1,
				MaintenanceType:   "oil change",
				NextDueHours:      500,
				WarningThreshold:  100,
				CriticalThreshold: 50,
				EmailFrequency:    FrequencyDaily,
			}},
		},
	}
}

func TestFirstPassSendsExactlyOneOverdueEmail(t *testing.T) {
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	repo := overdueFixture(now)
	mailer := &fakeMailer{}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)
	s.now = func() time.Time { return now }
	s.hours.now = s.now

	if !s.RunOnce(context.Background()) {
		t.Fatal("expected the pass to run")
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	if !strings.HasPrefix(mailer.sent[0].subject, "OVERDUE:") {
		t.Fatalf("expected overdue subject, got %q", mailer.sent[0].subject)
	}
	if len(repo.logs) != 1 || repo.logs[0].Urgency != string(UrgencyOverdue) || repo.logs[0].Status != "sent" {
		t.Fatalf("unexpected email log: %+v", repo.logs)
	}
	if repo.logs[0].HoursOverdue != 20 {
		t.Fatalf("expected 20 hours overdue in log, got %v", repo.logs[0].HoursOverdue)
	}
	last := repo.schedules[1][0].LastEmailSent
	if last == nil || !last.Equal(now) {
		t.Fatalf("expected lastEmailSent=%v, got %v", now, last)
	}
}

func TestSecondPassOneHourLaterSendsNothing(t *testing.T) {
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	repo := overdueFixture(now)
	mailer := &fakeMailer{}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)
	s.now = func() time.Time { return now }
	s.hours.now = s.now

	s.RunOnce(context.Background())
	now = now.Add(time.Hour)
	s.RunOnce(context.Background())

	if len(mailer.sent) != 1 {
		t.Fatalf("expected no second email within the daily window, got %d sends", len(mailer.sent))
	}
}

func TestRunOnceSkipsWhileAnotherPassIsRunning(t *testing.T) {
	repo := overdueFixture(time.Now())
	mailer := &fakeMailer{}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)

	s.running.Store(true)
	if s.RunOnce(context.Background()) {
		t.Fatal("expected the overlapping pass to be skipped")
	}
	if len(mailer.sent) != 0 {
		t.Fatal("skipped pass must not send")
	}
	s.running.Store(false)
	if !s.RunOnce(context.Background()) {
		t.Fatal("expected the next pass to run after the guard clears")
	}
}

func TestSendFailureDoesNotStopThePass(t *testing.T) {
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	repo := overdueFixture(now)
	repo.equipment = append(repo.equipment, storage.Equipment{
		ID:                  2,
		Name:                "Pump 7",
		Status:              "active",
		CurrentRunningHours: 990,
		HoursSource:         storage.HoursSourceCalculated,
		HoursUpdatedAt:      now,
		EnableEmailAlerts:   true,
		Recipients:          []string{"shift@example.com"},
	})
	repo.schedules[2] = []storage.MaintenanceSchedule{{
		ID:              21,
		EquipmentID:     2,
		MaintenanceType: "bearing inspection",
		NextDueHours:    1000,
		EmailFrequency:  FrequencyDaily,
	}}
	mailer := &fakeMailer{failFor: map[string]bool{"ops@example.com": true}}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)
	s.now = func() time.Time { return now }
	s.hours.now = s.now

	s.RunOnce(context.Background())

	if len(mailer.sent) != 1 || mailer.sent[0].recipients[0] != "shift@example.com" {
		t.Fatalf("expected the second equipment to still be processed, sent: %+v", mailer.sent)
	}
	// The failed send must leave no log row and no lastEmailSent.
	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(repo.logs))
	}
	if repo.schedules[1][0].LastEmailSent != nil {
		t.Fatal("failed send must not advance lastEmailSent")
	}
}

func TestPassSurvivesRepositoryError(t *testing.T) {
	repo := &fakeRepo{dueErr: errors.New("db down")}
	s := NewScheduler(repo, &fakeMailer{}, nil, testLogger(), time.Hour)
	if !s.RunOnce(context.Background()) {
		t.Fatal("expected the pass to run and absorb the error")
	}
}

func TestSendManualEmailBypassesThrottle(t *testing.T) {
	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	repo := overdueFixture(now)
	sent := now.Add(-5 * time.Minute)
	repo.schedules[1][0].LastEmailSent = &sent
	repo.schedules[1][0].EmailFrequency = FrequencyOnce
	mailer := &fakeMailer{}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)
	s.now = func() time.Time { return now }
	s.hours.now = s.now

	if err := s.SendManualEmail(context.Background(), 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 manual email, got %d", len(mailer.sent))
	}
}

func TestSendManualEmailStillClassifiesUrgency(t *testing.T) {
	now := time.Now()
	repo := overdueFixture(now)
	repo.equipment[0].CurrentRunningHours = 100 // far from due
	mailer := &fakeMailer{}
	s := NewScheduler(repo, mailer, nil, testLogger(), time.Hour)

	scheduleID := int64(11)
	if err := s.SendManualEmail(context.Background(), 1, &scheduleID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(mailer.sent[0].subject, "Maintenance reminder:") {
		t.Fatalf("expected reminder subject outside the bands, got %q", mailer.sent[0].subject)
	}
}

func TestSendManualEmailUnknownSchedule(t *testing.T) {
	repo := overdueFixture(time.Now())
	s := NewScheduler(repo, &fakeMailer{}, nil, testLogger(), time.Hour)

	scheduleID := int64(99)
	err := s.SendManualEmail(context.Background(), 1, &scheduleID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

type fakeBus struct {
	published []string
}

func (b *fakeBus) Publish(subject string, payload any) error {
	b.published = append(b.published, fmt.Sprintf("%s %v", subject, payload))
	return nil
}

func TestAlertEventPublishedAfterSend(t *testing.T) {
	now := time.Now()
	repo := overdueFixture(now)
	bus := &fakeBus{}
	s := NewScheduler(repo, &fakeMailer{}, bus, testLogger(), time.Hour)

	s.RunOnce(context.Background())
	if len(bus.published) != 1 || !strings.HasPrefix(bus.published[0], alertSentSubject) {
		t.Fatalf("expected one %s event, got %v", alertSentSubject, bus.published)
	}
}
