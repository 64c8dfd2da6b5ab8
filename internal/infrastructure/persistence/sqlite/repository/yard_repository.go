package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"yardwatch/internal/domain/yard"
	"yardwatch/internal/errs"
	"yardwatch/internal/infrastructure/persistence/sqlite/model"
	"yardwatch/internal/ports"
)

type YardRepository struct {
	db *gorm.DB
}

func NewYardRepository(db *gorm.DB) *YardRepository {
	return &YardRepository{db: db}
}

func (r *YardRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *YardRepository) GetOrCreateTruck(ctx context.Context, truckID string, defaults ports.TruckDefaults) (ports.Truck, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Truck{}, false, err
	}

	var row model.Truck
	result := db.
		Where("truck_id = ?", truckID).
		Attrs(model.Truck{
			TruckID:       truckID,
			LicensePlate:  defaults.LicensePlate,
			DriverName:    defaults.DriverName,
			Company:       defaults.Company,
			CurrentStatus: defaults.CurrentStatus,
		}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return ports.Truck{}, false, errs.Wrapf(result.Error, "get or create truck %q", truckID)
	}
	return mapTruck(row), result.RowsAffected > 0, nil
}

func (r *YardRepository) UpdateTruckStatus(ctx context.Context, truckRef uint64, status string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Truck{}).
		Where("id = ?", truckRef).
		Update("current_status", status)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update truck status")
	}
	if result.RowsAffected == 0 {
		return ports.ErrTruckNotFound
	}
	return nil
}

func (r *YardRepository) ListTrucks(ctx context.Context, limit int) ([]ports.Truck, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Truck{}).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Truck
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query trucks")
	}

	items := make([]ports.Truck, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTruck(row))
	}
	return items, nil
}

func (r *YardRepository) CountTrucksByStatus(ctx context.Context, statuses []string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Truck{}).
		Where("current_status IN ?", statuses).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count trucks by status")
	}
	return count, nil
}

func (r *YardRepository) AppendTruckEvent(ctx context.Context, create ports.TruckEventCreate) (ports.TruckEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TruckEvent{}, err
	}

	row := model.TruckEvent{
		EventID:   uuid.NewString(),
		TruckRef:  create.TruckRef,
		EventType: create.EventType,
		Timestamp: create.Timestamp,
		Location:  create.Location,
		Notes:     create.Notes,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.TruckEvent{}, errs.Wrap(err, "append truck event")
	}
	return mapTruckEvent(row, ""), nil
}

// truckEventRow joins the external truck key onto an event for display.
type truckEventRow struct {
	model.TruckEvent
	TruckID string `gorm:"column:truck_id"`
}

func (r *YardRepository) ListRecentTruckEvents(ctx context.Context, limit int) ([]ports.TruckEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := r.joinedEventQuery(db).Order("truck_events.timestamp desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return scanTruckEvents(query)
}

func (r *YardRepository) ListTruckEventsSince(ctx context.Context, since string) ([]ports.TruckEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := r.joinedEventQuery(db).
		Where("truck_events.timestamp >= ?", since).
		Order("truck_events.timestamp asc")
	return scanTruckEvents(query)
}

func (r *YardRepository) joinedEventQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.TruckEvent{}).
		Select("truck_events.*, trucks.truck_id AS truck_id").
		Joins("LEFT JOIN trucks ON trucks.id = truck_events.truck_ref")
}

func scanTruckEvents(query *gorm.DB) ([]ports.TruckEvent, error) {
	var rows []truckEventRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query truck events")
	}

	items := make([]ports.TruckEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTruckEvent(row.TruckEvent, row.TruckID))
	}
	return items, nil
}

func (r *YardRepository) CreateSafetyEvent(ctx context.Context, create ports.SafetyEventCreate) (ports.SafetyEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.SafetyEvent{}, err
	}

	row := model.SafetyEvent{
		EventID:       uuid.NewString(),
		ViolationType: create.ViolationType,
		Severity:      create.Severity,
		Timestamp:     create.Timestamp,
		Location:      create.Location,
		Description:   create.Description,
		Resolved:      false,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.SafetyEvent{}, errs.Wrap(err, "create safety event")
	}
	return mapSafetyEvent(row), nil
}

func (r *YardRepository) ListSafetyEventsSince(ctx context.Context, since string) ([]ports.SafetyEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.SafetyEvent
	if err := db.
		Where("timestamp >= ?", since).
		Order("timestamp desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query safety events")
	}

	items := make([]ports.SafetyEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSafetyEvent(row))
	}
	return items, nil
}

func (r *YardRepository) ResolveSafetyEvent(ctx context.Context, eventID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.SafetyEvent{}).
		Where("event_id = ?", eventID).
		Update("resolved", true)
	if result.Error != nil {
		return errs.Wrap(result.Error, "resolve safety event")
	}
	if result.RowsAffected == 0 {
		return ports.ErrSafetyEventNotFound
	}
	return nil
}

func (r *YardRepository) GetOrCreateEquipment(ctx context.Context, equipmentID string, defaults ports.EquipmentDefaults) (ports.Equipment, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Equipment{}, false, err
	}

	var row model.Equipment
	result := db.
		Where("equipment_id = ?", equipmentID).
		Attrs(model.Equipment{
			EquipmentID:     equipmentID,
			EquipmentType:   defaults.EquipmentType,
			Status:          defaults.Status,
			CurrentLocation: defaults.CurrentLocation,
		}).
		FirstOrCreate(&row)
	if result.Error != nil {
		return ports.Equipment{}, false, errs.Wrapf(result.Error, "get or create equipment %q", equipmentID)
	}
	return mapEquipment(row), result.RowsAffected > 0, nil
}

func (r *YardRepository) UpdateEquipmentState(ctx context.Context, equipmentRef uint64, status string, location string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Equipment{}).
		Where("id = ?", equipmentRef).
		Updates(map[string]any{
			"status":           status,
			"current_location": location,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update equipment state")
	}
	if result.RowsAffected == 0 {
		return ports.ErrEquipmentNotFound
	}
	return nil
}

func (r *YardRepository) ListEquipment(ctx context.Context) ([]ports.Equipment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Equipment
	if err := db.Order("equipment_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query equipment")
	}

	items := make([]ports.Equipment, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapEquipment(row))
	}
	return items, nil
}

func (r *YardRepository) CreateAlert(ctx context.Context, create ports.AlertCreate) (ports.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Alert{}, err
	}

	row := model.Alert{
		AlertID:             uuid.NewString(),
		AlertType:           create.AlertType,
		Priority:            create.Priority,
		Title:               create.Title,
		Message:             create.Message,
		Timestamp:           create.Timestamp,
		Acknowledged:        false,
		RelatedTruckRef:     create.RelatedTruckRef,
		RelatedEquipmentRef: create.RelatedEquipmentRef,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Alert{}, errs.Wrap(err, "create alert")
	}
	return mapAlert(row), nil
}

func (r *YardRepository) ListUnacknowledgedAlerts(ctx context.Context, limit int) ([]ports.Alert, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Alert{}).
		Where("acknowledged = ?", false).
		Order("timestamp desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Alert
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query alerts")
	}

	items := make([]ports.Alert, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAlert(row))
	}
	return items, nil
}

func (r *YardRepository) CountUnacknowledgedAlerts(ctx context.Context) (ports.AlertCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AlertCounts{}, err
	}

	var counts ports.AlertCounts
	if err := db.Model(&model.Alert{}).
		Where("acknowledged = ?", false).
		Count(&counts.Total).Error; err != nil {
		return ports.AlertCounts{}, errs.Wrap(err, "count alerts")
	}
	if err := db.Model(&model.Alert{}).
		Where("acknowledged = ? AND priority IN ?", false, []string{yard.PriorityHigh, yard.PriorityCritical}).
		Count(&counts.Critical).Error; err != nil {
		return ports.AlertCounts{}, errs.Wrap(err, "count critical alerts")
	}
	return counts, nil
}

func (r *YardRepository) AcknowledgeAlert(ctx context.Context, alertID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Alert{}).
		Where("alert_id = ?", alertID).
		Update("acknowledged", true)
	if result.Error != nil {
		return errs.Wrap(result.Error, "acknowledge alert")
	}
	if result.RowsAffected == 0 {
		return ports.ErrAlertNotFound
	}
	return nil
}

func mapTruck(row model.Truck) ports.Truck {
	return ports.Truck{
		ID:            row.ID,
		TruckID:       row.TruckID,
		LicensePlate:  row.LicensePlate,
		DriverName:    row.DriverName,
		Company:       row.Company,
		CurrentStatus: row.CurrentStatus,
	}
}

func mapTruckEvent(row model.TruckEvent, truckID string) ports.TruckEvent {
	return ports.TruckEvent{
		EventID:         row.EventID,
		TruckRef:        row.TruckRef,
		TruckID:         truckID,
		EventType:       row.EventType,
		Timestamp:       row.Timestamp,
		Location:        row.Location,
		DurationMinutes: row.DurationMinutes,
		Notes:           row.Notes,
	}
}

func mapSafetyEvent(row model.SafetyEvent) ports.SafetyEvent {
	return ports.SafetyEvent{
		EventID:       row.EventID,
		ViolationType: row.ViolationType,
		Severity:      row.Severity,
		Timestamp:     row.Timestamp,
		Location:      row.Location,
		Description:   row.Description,
		Resolved:      row.Resolved,
	}
}

func mapEquipment(row model.Equipment) ports.Equipment {
	return ports.Equipment{
		ID:              row.ID,
		EquipmentID:     row.EquipmentID,
		EquipmentType:   row.EquipmentType,
		Status:          row.Status,
		CurrentLocation: row.CurrentLocation,
		LastMaintenance: row.LastMaintenance,
		NextMaintenance: row.NextMaintenance,
	}
}

func mapAlert(row model.Alert) ports.Alert {
	return ports.Alert{
		AlertID:             row.AlertID,
		AlertType:           row.AlertType,
		Priority:            row.Priority,
		Title:               row.Title,
		Message:             row.Message,
		Timestamp:           row.Timestamp,
		Acknowledged:        row.Acknowledged,
		RelatedTruckRef:     row.RelatedTruckRef,
		RelatedEquipmentRef: row.RelatedEquipmentRef,
	}
}
