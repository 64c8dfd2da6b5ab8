package yard

// DetectionDocument is the drop-in JSON contract produced by the external
// detection pipeline. Every top-level key is optional; a missing key means
// "no detections of that kind in this file". Unknown keys are ignored.
type DetectionDocument struct {
	TruckDetections  []TruckDetection  `json:"truck_detections"`
	SafetyViolations []SafetyViolation `json:"safety_violations"`
	EquipmentStatus  []EquipmentReport `json:"equipment_status"`
}

// TruckDetection describes one truck movement or status observation.
// TruckID is the only required field.
type TruckDetection struct {
	TruckID      string `json:"truck_id"`
	EventType    string `json:"event_type"`
	Location     string `json:"location"`
	LicensePlate string `json:"license_plate"`
	DriverName   string `json:"driver_name"`
	Company      string `json:"company"`
	Notes        string `json:"notes"`
}

// SafetyViolation describes one observed safety incident. All fields are
// optional and default at the boundary.
type SafetyViolation struct {
	ViolationType string `json:"violation_type"`
	Severity      string `json:"severity"`
	Location      string `json:"location"`
	Description   string `json:"description"`
}

// EquipmentReport describes the observed state of one piece of yard
// equipment. EquipmentID is the only required field.
type EquipmentReport struct {
	EquipmentID   string `json:"equipment_id"`
	EquipmentType string `json:"equipment_type"`
	Status        string `json:"status"`
	Location      string `json:"location"`
}
