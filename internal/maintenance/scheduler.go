package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sathish136/automationhub-sub003/internal/metrics"
	"github.com/sathish136/automationhub-sub003/internal/storage"
)

// Repository is the storage collaborator the alerting engine depends on. The
// pgx repository implements it; tests supply fakes.
type Repository interface {
	GetEquipmentDueForMaintenance(ctx context.Context) ([]storage.Equipment, error)
	ListEquipment(ctx context.Context) ([]storage.Equipment, error)
	GetEquipment(ctx context.Context, id int64) (storage.Equipment, error)
	UpdateEquipmentHours(ctx context.Context, id int64, hours float64, updatedAt time.Time) error
	GetMaintenanceSchedules(ctx context.Context, equipmentID int64) ([]storage.MaintenanceSchedule, error)
	UpdateScheduleLastEmailSent(ctx context.Context, id int64, sentAt time.Time) error
	GetPlcTag(ctx context.Context, id int64) (storage.PlcTag, error)
	CreateEmailLog(ctx context.Context, entry storage.MaintenanceEmailLog) error
}

type Mailer interface {
	SendAlert(ctx context.Context, recipients []string, subject, body string) error
}

// Publisher mirrors the bus publisher; nil disables event publishing.
type Publisher interface {
	Publish(subject string, payload any) error
}

type AlertSentEvent struct {
	EquipmentID int64     `json:"equipmentId"`
	ScheduleID  int64     `json:"scheduleId"`
	Urgency     string    `json:"urgency"`
	Recipients  []string  `json:"recipients"`
	SentAt      time.Time `json:"sentAt"`
}

const alertSentSubject = "maintenance.alert.sent"

// Scheduler drives the recurring maintenance evaluation. One pass pulls the
// due set, classifies each schedule, throttles, sends, and then refreshes
// running-hour counters. Passes never overlap: a tick that arrives while a
// pass is still executing is skipped outright, not queued.
type Scheduler struct {
	repo     Repository
	mailer   Mailer
	bus      Publisher
	hours    *HoursUpdater
	log      *slog.Logger
	interval time.Duration
	running  atomic.Bool
	stop     chan struct{}
	now      func() time.Time
}

func NewScheduler(repo Repository, mailer Mailer, bus Publisher, log *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		repo:     repo,
		mailer:   mailer,
		bus:      bus,
		hours:    NewHoursUpdater(repo, log),
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start performs an immediate pass and then arms the recurring ticker.
func (s *Scheduler) Start() {
	go func() {
		s.RunOnce(context.Background())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

// RunOnce executes a single idempotent pass. It reports false when a prior
// pass was still running and this one was skipped. Errors and panics are
// contained: a failed pass logs and leaves the next tick unaffected.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("maintenance pass already running, skipping")
		return false
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("maintenance pass panicked", slog.Any("panic", r))
			metrics.MaintenancePasses.WithLabelValues("panic").Inc()
		}
	}()
	s.pass(ctx)
	return true
}

func (s *Scheduler) pass(ctx context.Context) {
	started := s.now()
	due, err := s.repo.GetEquipmentDueForMaintenance(ctx)
	if err != nil {
		s.log.Error("failed to load due equipment", slog.String("error", err.Error()))
		metrics.MaintenancePasses.WithLabelValues("error").Inc()
		return
	}
	sent := 0
	for _, eq := range due {
		n, err := s.processEquipment(ctx, eq)
		sent += n
		if err != nil {
			// One equipment's failure must not stall the rest of the pass.
			s.log.Error("failed to process equipment",
				slog.Int64("equipmentId", eq.ID), slog.String("error", err.Error()))
		}
	}
	s.hours.UpdateAll(ctx)
	metrics.MaintenancePasses.WithLabelValues("ok").Inc()
	s.log.Info("maintenance pass complete",
		slog.Int("due", len(due)), slog.Int("sent", sent),
		slog.Duration("elapsed", s.now().Sub(started)))
}

func (s *Scheduler) processEquipment(ctx context.Context, eq storage.Equipment) (int, error) {
	schedules, err := s.repo.GetMaintenanceSchedules(ctx, eq.ID)
	if err != nil {
		return 0, fmt.Errorf("load schedules: %w", err)
	}
	sent := 0
	for _, sched := range schedules {
		eval := Evaluate(eq.CurrentRunningHours, sched.NextDueHours, sched.WarningThreshold, sched.CriticalThreshold)
		if eval.Urgency == UrgencyNone {
			continue
		}
		if !ShouldSend(eq.EnableEmailAlerts, sched.EmailFrequency, sched.LastEmailSent, s.now()) {
			continue
		}
		if err := s.sendAlert(ctx, eq, sched, eval); err != nil {
			s.log.Error("failed to send maintenance alert",
				slog.Int64("equipmentId", eq.ID), slog.Int64("scheduleId", sched.ID),
				slog.String("urgency", string(eval.Urgency)), slog.String("error", err.Error()))
			metrics.AlertEmails.WithLabelValues(string(eval.Urgency), "failed").Inc()
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Scheduler) sendAlert(ctx context.Context, eq storage.Equipment, sched storage.MaintenanceSchedule, eval Evaluation) error {
	if len(eq.Recipients) == 0 {
		return fmt.Errorf("equipment %d has no alert recipients", eq.ID)
	}
	now := s.now()
	email := RenderAlert(eq, sched, eval, now)
	if err := s.mailer.SendAlert(ctx, eq.Recipients, email.Subject, email.Body); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	if err := s.repo.CreateEmailLog(ctx, storage.MaintenanceEmailLog{
		ID:            uuid.NewString(),
		EquipmentID:   eq.ID,
		ScheduleID:    sched.ID,
		Urgency:       string(eval.Urgency),
		Recipients:    eq.Recipients,
		Subject:       email.Subject,
		Body:          email.Body,
		HoursSnapshot: eq.CurrentRunningHours,
		HoursOverdue:  eval.HoursOverdue,
		Status:        "sent",
		CreatedAt:     now,
	}); err != nil {
		s.log.Error("failed to record email log", slog.Int64("scheduleId", sched.ID), slog.String("error", err.Error()))
	}
	if err := s.repo.UpdateScheduleLastEmailSent(ctx, sched.ID, now); err != nil {
		s.log.Error("failed to record last email sent", slog.Int64("scheduleId", sched.ID), slog.String("error", err.Error()))
	}
	metrics.AlertEmails.WithLabelValues(string(eval.Urgency), "sent").Inc()
	if s.bus != nil {
		if err := s.bus.Publish(alertSentSubject, AlertSentEvent{
			EquipmentID: eq.ID,
			ScheduleID:  sched.ID,
			Urgency:     string(eval.Urgency),
			Recipients:  eq.Recipients,
			SentAt:      now,
		}); err != nil {
			s.log.Warn("failed to publish alert event", slog.String("error", err.Error()))
		}
	}
	return nil
}

// SendManualEmail forces an alert outside the throttle policy. The urgency
// classification still applies, so a schedule that is not yet in any band goes
// out as a plain reminder.
func (s *Scheduler) SendManualEmail(ctx context.Context, equipmentID int64, scheduleID *int64) error {
	eq, err := s.repo.GetEquipment(ctx, equipmentID)
	if err != nil {
		return fmt.Errorf("load equipment %d: %w", equipmentID, err)
	}
	schedules, err := s.repo.GetMaintenanceSchedules(ctx, equipmentID)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}
	if scheduleID != nil {
		filtered := schedules[:0]
		for _, sched := range schedules {
			if sched.ID == *scheduleID {
				filtered = append(filtered, sched)
			}
		}
		schedules = filtered
		if len(schedules) == 0 {
			return fmt.Errorf("schedule %d not found for equipment %d: %w", *scheduleID, equipmentID, storage.ErrNotFound)
		}
	}
	for _, sched := range schedules {
		eval := Evaluate(eq.CurrentRunningHours, sched.NextDueHours, sched.WarningThreshold, sched.CriticalThreshold)
		if err := s.sendAlert(ctx, eq, sched, eval); err != nil {
			return err
		}
	}
	return nil
}
