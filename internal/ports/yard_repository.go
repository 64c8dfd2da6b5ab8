package ports

import (
	"context"
	"errors"
)

var (
	ErrTruckNotFound       = errors.New("truck not found")
	ErrEquipmentNotFound   = errors.New("equipment not found")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrSafetyEventNotFound = errors.New("safety event not found")
)

type Truck struct {
	ID            uint64
	TruckID       string
	LicensePlate  string
	DriverName    string
	Company       string
	CurrentStatus string
}

// TruckDefaults seeds a truck row created on first detection of an unknown
// truck_id. Subsequent detections never overwrite these fields.
type TruckDefaults struct {
	LicensePlate  string
	DriverName    string
	Company       string
	CurrentStatus string
}

type TruckEvent struct {
	EventID         string
	TruckRef        uint64
	TruckID         string // external truck key, populated on reads
	EventType       string
	Timestamp       string
	Location        string
	DurationMinutes *int
	Notes           string
}

type TruckEventCreate struct {
	TruckRef  uint64
	EventType string
	Timestamp string
	Location  string
	Notes     string
}

type SafetyEvent struct {
	EventID       string
	ViolationType string
	Severity      string
	Timestamp     string
	Location      string
	Description   string
	Resolved      bool
}

type SafetyEventCreate struct {
	ViolationType string
	Severity      string
	Timestamp     string
	Location      string
	Description   string
}

type Equipment struct {
	ID              uint64
	EquipmentID     string
	EquipmentType   string
	Status          string
	CurrentLocation string
	LastMaintenance *string
	NextMaintenance *string
}

type EquipmentDefaults struct {
	EquipmentType   string
	Status          string
	CurrentLocation string
}

type Alert struct {
	AlertID             string
	AlertType           string
	Priority            string
	Title               string
	Message             string
	Timestamp           string
	Acknowledged        bool
	RelatedTruckRef     *uint64
	RelatedEquipmentRef *uint64
}

type AlertCreate struct {
	AlertType           string
	Priority            string
	Title               string
	Message             string
	Timestamp           string
	RelatedTruckRef     *uint64
	RelatedEquipmentRef *uint64
}

// AlertCounts summarizes unacknowledged alerts; Critical counts the
// high and critical priorities together.
type AlertCounts struct {
	Total    int64
	Critical int64
}

// YardRepository is the single persistence surface of the yard. Appends
// (TruckEvent, SafetyEvent, Alert) are immutable once written; Truck and
// Equipment rows are mutated in place.
type YardRepository interface {
	GetOrCreateTruck(ctx context.Context, truckID string, defaults TruckDefaults) (Truck, bool, error)
	UpdateTruckStatus(ctx context.Context, truckRef uint64, status string) error
	ListTrucks(ctx context.Context, limit int) ([]Truck, error)
	CountTrucksByStatus(ctx context.Context, statuses []string) (int64, error)

	AppendTruckEvent(ctx context.Context, create TruckEventCreate) (TruckEvent, error)
	ListRecentTruckEvents(ctx context.Context, limit int) ([]TruckEvent, error)
	ListTruckEventsSince(ctx context.Context, since string) ([]TruckEvent, error)

	CreateSafetyEvent(ctx context.Context, create SafetyEventCreate) (SafetyEvent, error)
	ListSafetyEventsSince(ctx context.Context, since string) ([]SafetyEvent, error)
	ResolveSafetyEvent(ctx context.Context, eventID string) error

	GetOrCreateEquipment(ctx context.Context, equipmentID string, defaults EquipmentDefaults) (Equipment, bool, error)
	UpdateEquipmentState(ctx context.Context, equipmentRef uint64, status string, location string) error
	ListEquipment(ctx context.Context) ([]Equipment, error)

	CreateAlert(ctx context.Context, create AlertCreate) (Alert, error)
	ListUnacknowledgedAlerts(ctx context.Context, limit int) ([]Alert, error)
	CountUnacknowledgedAlerts(ctx context.Context) (AlertCounts, error)
	AcknowledgeAlert(ctx context.Context, alertID string) error
}
