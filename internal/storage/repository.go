package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

const equipmentColumns = `id, name, equipment_type, status, current_running_hours, hours_source, plc_tag_id, hours_updated_at, enable_email_alerts, recipients, created_at`

func scanEquipment(row pgx.Row) (Equipment, error) {
	var eq Equipment
	err := row.Scan(&eq.ID, &eq.Name, &eq.EquipmentType, &eq.Status, &eq.CurrentRunningHours, &eq.HoursSource, &eq.PlcTagID, &eq.HoursUpdatedAt, &eq.EnableEmailAlerts, &eq.Recipients, &eq.CreatedAt)
	return eq, err
}

// GetEquipmentDueForMaintenance returns alert-enabled equipment that has at
// least one schedule inside its warning band. Threshold math is re-run in Go;
// this query only narrows the candidate set.
func (r *Repository) GetEquipmentDueForMaintenance(ctx context.Context) ([]Equipment, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT DISTINCT e.id, e.name, e.equipment_type, e.status, e.current_running_hours, e.hours_source, e.plc_tag_id, e.hours_updated_at, e.enable_email_alerts, e.recipients, e.created_at
		FROM equipment e
		JOIN maintenance_schedules s ON s.equipment_id = e.id
		WHERE e.enable_email_alerts = true
		  AND e.current_running_hours >= s.next_due_hours - GREATEST(s.warning_threshold, 100)
		ORDER BY e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []Equipment{}
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, eq)
	}
	return results, rows.Err()
}

func (r *Repository) ListEquipment(ctx context.Context) ([]Equipment, error) {
	rows, err := r.Store.Pool.Query(ctx, `SELECT `+equipmentColumns+` FROM equipment ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []Equipment{}
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, eq)
	}
	return results, rows.Err()
}

func (r *Repository) GetEquipment(ctx context.Context, id int64) (Equipment, error) {
	row := r.Store.Pool.QueryRow(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id=$1`, id)
	eq, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Equipment{}, ErrNotFound
		}
		return Equipment{}, err
	}
	return eq, nil
}

func (r *Repository) UpdateEquipmentHours(ctx context.Context, id int64, hours float64, updatedAt time.Time) error {
	_, err := r.Store.Pool.Exec(ctx, `
		UPDATE equipment SET current_running_hours=$1, hours_updated_at=$2 WHERE id=$3`,
		hours, updatedAt, id)
	return err
}

func (r *Repository) GetMaintenanceSchedules(ctx context.Context, equipmentID int64) ([]MaintenanceSchedule, error) {
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT id, equipment_id, maintenance_type, next_due_hours, warning_threshold, critical_threshold,
		       email_frequency, last_email_sent, priority, instructions, required_parts, created_at, updated_at
		FROM maintenance_schedules WHERE equipment_id=$1 ORDER BY next_due_hours`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []MaintenanceSchedule{}
	for rows.Next() {
		var s MaintenanceSchedule
		if err := rows.Scan(&s.ID, &s.EquipmentID, &s.MaintenanceType, &s.NextDueHours, &s.WarningThreshold, &s.CriticalThreshold,
			&s.EmailFrequency, &s.LastEmailSent, &s.Priority, &s.Instructions, &s.RequiredParts, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// UpdateScheduleLastEmailSent is the only schedule mutation the alerting
// engine performs; everything else on schedules belongs to the CRUD layer.
func (r *Repository) UpdateScheduleLastEmailSent(ctx context.Context, id int64, sentAt time.Time) error {
	_, err := r.Store.Pool.Exec(ctx, `
		UPDATE maintenance_schedules SET last_email_sent=$1, updated_at=now() WHERE id=$2`,
		sentAt, id)
	return err
}

func (r *Repository) GetPlcTag(ctx context.Context, id int64) (PlcTag, error) {
	row := r.Store.Pool.QueryRow(ctx, `SELECT id, name, last_value, updated_at FROM plc_tags WHERE id=$1`, id)
	var tag PlcTag
	if err := row.Scan(&tag.ID, &tag.Name, &tag.LastValue, &tag.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlcTag{}, ErrNotFound
		}
		return PlcTag{}, err
	}
	return tag, nil
}

func (r *Repository) CreateEmailLog(ctx context.Context, entry MaintenanceEmailLog) error {
	_, err := r.Store.Pool.Exec(ctx, `
		INSERT INTO maintenance_email_log (id, equipment_id, schedule_id, urgency, recipients, subject, body, hours_snapshot, hours_overdue, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		entry.ID, entry.EquipmentID, entry.ScheduleID, entry.Urgency, entry.Recipients, entry.Subject, entry.Body,
		entry.HoursSnapshot, entry.HoursOverdue, entry.Status, entry.CreatedAt)
	return err
}
