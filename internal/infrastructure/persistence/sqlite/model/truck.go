package model

type Truck struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	TruckID       string `gorm:"column:truck_id;type:text;not null;uniqueIndex"`
	LicensePlate  string `gorm:"column:license_plate;type:text;not null"`
	DriverName    string `gorm:"column:driver_name;type:text;not null"`
	Company       string `gorm:"column:company;type:text;not null"`
	CurrentStatus string `gorm:"column:current_status;type:text;not null"`
}

func (Truck) TableName() string {
	return "trucks"
}
