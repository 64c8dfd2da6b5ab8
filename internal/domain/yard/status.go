package yard

import "strings"

// Truck lifecycle statuses.
const (
	TruckStatusGateIn   = "gate_in"
	TruckStatusDocked   = "docked"
	TruckStatusLoading  = "loading"
	TruckStatusDeparted = "departed"
	TruckStatusDelayed  = "delayed"
)

// Truck event types as emitted by the detection producer.
const (
	EventGateIn       = "gate_in"
	EventDocked       = "docked"
	EventLoadingStart = "loading_start"
	EventLoadingEnd   = "loading_end"
	EventDeparted     = "departed"
	EventDelay        = "delay"
	EventSafetyAlert  = "safety_alert"
)

// Safety violation types and severities.
const (
	ViolationNoPPE           = "no_ppe"
	ViolationOverspeed       = "overspeed"
	ViolationZoneBreach      = "zone_breach"
	ViolationUnsafeOperation = "unsafe_operation"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Equipment types and statuses.
const (
	EquipmentForklift = "forklift"
	EquipmentCrane    = "crane"
	EquipmentLoader   = "loader"

	EquipmentStatusActive      = "active"
	EquipmentStatusIdle        = "idle"
	EquipmentStatusMaintenance = "maintenance"
	EquipmentStatusOffline     = "offline"
)

// Alert types and priorities.
const (
	AlertTypeDelay      = "delay"
	AlertTypeSafety     = "safety"
	AlertTypeEquipment  = "equipment"
	AlertTypeCongestion = "congestion"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Boundary defaults for partially-filled detection records. The producer is
// untrusted; a missing field falls back to these instead of failing the batch.
const (
	DefaultLicensePlate    = "UNKNOWN"
	DefaultDriverName      = "Unknown"
	DefaultCompany         = "Unknown"
	DefaultLocation        = "Unknown"
	DefaultNotes           = "Automated detection"
	DefaultViolationType   = ViolationUnsafeOperation
	DefaultSeverity        = SeverityMedium
	DefaultDescription     = "Safety violation detected"
	DefaultEquipmentType   = EquipmentForklift
	DefaultEquipmentStatus = EquipmentStatusIdle
)

var truckStatusByEvent = map[string]string{
	EventGateIn:       TruckStatusGateIn,
	EventDocked:       TruckStatusDocked,
	EventLoadingStart: TruckStatusLoading,
	EventLoadingEnd:   TruckStatusLoading,
	EventDeparted:     TruckStatusDeparted,
}

// TruckStatusForEvent maps a detection event type onto the truck status it
// implies. Event types outside the table leave the current status untouched.
func TruckStatusForEvent(eventType string) (string, bool) {
	status, ok := truckStatusByEvent[strings.TrimSpace(eventType)]
	return status, ok
}

// SeverityEscalates reports whether a safety violation of the given severity
// must raise a persisted Alert.
func SeverityEscalates(severity string) bool {
	return severity == SeverityHigh || severity == SeverityCritical
}

// OrDefault returns the trimmed value, or fallback when the value is empty.
func OrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
