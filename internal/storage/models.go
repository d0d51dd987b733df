package storage

import "time"

// Hours sources for equipment runtime counters.
const (
	HoursSourcePLCTag     = "plc_tag"
	HoursSourceCalculated = "calculated"
)

type Equipment struct {
	ID                  int64
	Name                string
	EquipmentType       string
	Status              string
	CurrentRunningHours float64
	HoursSource         string
	PlcTagID            *int64
	HoursUpdatedAt      time.Time
	EnableEmailAlerts   bool
	Recipients          []string
	CreatedAt           time.Time
}

type MaintenanceSchedule struct {
	ID                int64
	EquipmentID       int64
	MaintenanceType   string
	NextDueHours      float64
	WarningThreshold  float64
	CriticalThreshold float64
	EmailFrequency    string
	LastEmailSent     *time.Time
	Priority          string
	Instructions      string
	RequiredParts     []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PlcTag struct {
	ID        int64
	Name      string
	LastValue *float64
	UpdatedAt *time.Time
}

// MaintenanceEmailLog rows are append-only; the engine writes one per
// dispatched alert and never updates or deletes them.
type MaintenanceEmailLog struct {
	ID            string
	EquipmentID   int64
	ScheduleID    int64
	Urgency       string
	Recipients    []string
	Subject       string
	Body          string
	HoursSnapshot float64
	HoursOverdue  float64
	Status        string
	CreatedAt     time.Time
}
