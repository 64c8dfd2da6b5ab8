package model

type Equipment struct {
	ID              uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	EquipmentID     string  `gorm:"column:equipment_id;type:text;not null;uniqueIndex"`
	EquipmentType   string  `gorm:"column:equipment_type;type:text;not null"`
	Status          string  `gorm:"column:status;type:text;not null"`
	CurrentLocation string  `gorm:"column:current_location;type:text;not null"`
	LastMaintenance *string `gorm:"column:last_maintenance;type:text"`
	NextMaintenance *string `gorm:"column:next_maintenance;type:text"`
}

func (Equipment) TableName() string {
	return "equipment"
}
