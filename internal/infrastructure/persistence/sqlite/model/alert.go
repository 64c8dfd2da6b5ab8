package model

type Alert struct {
	AlertID             string  `gorm:"column:alert_id;type:text;primaryKey"`
	AlertType           string  `gorm:"column:alert_type;type:text;not null"`
	Priority            string  `gorm:"column:priority;type:text;not null"`
	Title               string  `gorm:"column:title;type:text;not null"`
	Message             string  `gorm:"column:message;type:text;not null"`
	Timestamp           string  `gorm:"column:timestamp;type:text;not null;index"`
	Acknowledged        bool    `gorm:"column:acknowledged;not null;default:0"`
	RelatedTruckRef     *uint64 `gorm:"column:related_truck_ref;index"`
	RelatedEquipmentRef *uint64 `gorm:"column:related_equipment_ref;index"`
}

func (Alert) TableName() string {
	return "alerts"
}
