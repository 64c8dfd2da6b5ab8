package model

type TruckEvent struct {
	EventID         string `gorm:"column:event_id;type:text;primaryKey"`
	TruckRef        uint64 `gorm:"column:truck_ref;not null;index"`
	EventType       string `gorm:"column:event_type;type:text;not null"`
	Timestamp       string `gorm:"column:timestamp;type:text;not null;index"`
	Location        string `gorm:"column:location;type:text;not null"`
	DurationMinutes *int   `gorm:"column:duration_minutes"`
	Notes           string `gorm:"column:notes;type:text;not null"`
}

func (TruckEvent) TableName() string {
	return "truck_events"
}
