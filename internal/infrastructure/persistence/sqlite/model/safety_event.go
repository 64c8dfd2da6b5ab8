package model

type SafetyEvent struct {
	EventID       string `gorm:"column:event_id;type:text;primaryKey"`
	ViolationType string `gorm:"column:violation_type;type:text;not null"`
	Severity      string `gorm:"column:severity;type:text;not null"`
	Timestamp     string `gorm:"column:timestamp;type:text;not null;index"`
	Location      string `gorm:"column:location;type:text;not null"`
	Description   string `gorm:"column:description;type:text;not null"`
	Resolved      bool   `gorm:"column:resolved;not null;default:0"`
}

func (SafetyEvent) TableName() string {
	return "safety_events"
}
