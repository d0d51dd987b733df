package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sathish136/automationhub-sub003/internal/storage"
)

// HoursUpdater keeps equipment running-hour counters fresh so the next pass's
// threshold math sees current values. It runs over all equipment, not just the
// due set.
type HoursUpdater struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewHoursUpdater(repo Repository, log *slog.Logger) *HoursUpdater {
	return &HoursUpdater{repo: repo, log: log, now: time.Now}
}

func (u *HoursUpdater) UpdateAll(ctx context.Context) {
	equipment, err := u.repo.ListEquipment(ctx)
	if err != nil {
		u.log.Error("failed to list equipment for hours update", slog.String("error", err.Error()))
		return
	}
	for _, eq := range equipment {
		if err := u.updateOne(ctx, eq); err != nil {
			u.log.Error("failed to update running hours",
				slog.Int64("equipmentId", eq.ID), slog.String("error", err.Error()))
		}
	}
}

func (u *HoursUpdater) updateOne(ctx context.Context, eq storage.Equipment) error {
	switch eq.HoursSource {
	case storage.HoursSourcePLCTag:
		return u.updateFromTag(ctx, eq)
	case storage.HoursSourceCalculated:
		return u.accrueElapsed(ctx, eq)
	default:
		return fmt.Errorf("unknown hours source %q", eq.HoursSource)
	}
}

// updateFromTag copies the tag's last known value when it differs from the
// stored counter. No interpolation; last value wins.
func (u *HoursUpdater) updateFromTag(ctx context.Context, eq storage.Equipment) error {
	if eq.PlcTagID == nil {
		return nil
	}
	tag, err := u.repo.GetPlcTag(ctx, *eq.PlcTagID)
	if err != nil {
		return fmt.Errorf("read plc tag %d: %w", *eq.PlcTagID, err)
	}
	if tag.LastValue == nil || *tag.LastValue == eq.CurrentRunningHours {
		return nil
	}
	return u.repo.UpdateEquipmentHours(ctx, eq.ID, *tag.LastValue, u.now())
}

// accrueElapsed adds wall-clock hours to active equipment once at least a full
// hour has passed since the last update. The counter is monotonic: accrual
// only ever adds to the stored total.
func (u *HoursUpdater) accrueElapsed(ctx context.Context, eq storage.Equipment) error {
	if eq.Status != "active" {
		return nil
	}
	now := u.now()
	elapsed := now.Sub(eq.HoursUpdatedAt)
	if elapsed < time.Hour {
		return nil
	}
	return u.repo.UpdateEquipmentHours(ctx, eq.ID, eq.CurrentRunningHours+elapsed.Hours(), now)
}
