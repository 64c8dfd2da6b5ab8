package yard

import "errors"

var (
	ErrTruckIDRequired     = errors.New("truck detection is missing truck_id")
	ErrEquipmentIDRequired = errors.New("equipment record is missing equipment_id")
)
