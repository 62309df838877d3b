package goodsin

import (
	"context"
	"strings"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists incoming shipments with their lines and serial units.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.IncomingShipment) error
	FindActive(ctx context.Context, id uint64) (*models.IncomingShipment, error)
	List(ctx context.Context, q listQuery) ([]models.IncomingShipment, error)
	ArrivalCodeTaken(ctx context.Context, code string) (bool, error)
	CountActiveItems(ctx context.Context, ids []uint64) (int64, error)
	ExistingSerials(ctx context.Context, serials []string) ([]string, error)
	CountAllocatedUnits(ctx context.Context, unitIDs []uint64) (int64, error)
	Deactivate(ctx context.Context, id uint64) error
}

type listQuery struct {
	search   string
	status   string
	cursorID uint64
	limit    int
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// Create inserts the shipment together with its lines and serial units.
func (r *repository) Create(ctx context.Context, shipment *models.IncomingShipment) error {
	return r.DB(ctx).Create(shipment).Error
}

func (r *repository) FindActive(ctx context.Context, id uint64) (*models.IncomingShipment, error) {
	var shipment models.IncomingShipment
	err := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Item").
		Preload("Lines.Units", func(db *gorm.DB) *gorm.DB { return db.Order("serial_number ASC") }).
		Where("id = ? AND is_active = ?", id, true).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) List(ctx context.Context, q listQuery) ([]models.IncomingShipment, error) {
	query := r.DB(ctx).
		Preload("Lines").
		Where("is_active = ?", true)
	if q.search != "" {
		like := "%" + strings.ToLower(q.search) + "%"
		query = query.Where("(LOWER(arrival_code) LIKE ? OR LOWER(supplier_name) LIKE ? OR LOWER(form_number) LIKE ?)", like, like, like)
	}
	if q.status != "" {
		query = query.Where("status = ?", q.status)
	}
	if q.cursorID > 0 {
		query = query.Where("id < ?", q.cursorID)
	}

	var rows []models.IncomingShipment
	if err := query.Order("id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ArrivalCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.IncomingShipment{}).Where("arrival_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *repository) CountActiveItems(ctx context.Context, ids []uint64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Item{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Count(&count).Error
	return count, err
}

func (r *repository) ExistingSerials(ctx context.Context, serials []string) ([]string, error) {
	var found []string
	err := r.DB(ctx).Model(&models.SerialUnit{}).
		Where("serial_number IN ?", serials).
		Order("serial_number ASC").
		Pluck("serial_number", &found).Error
	return found, err
}

func (r *repository) CountAllocatedUnits(ctx context.Context, unitIDs []uint64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.OutgoingShipmentLine{}).
		Where("serial_unit_id IN ?", unitIDs).
		Count(&count).Error
	return count, err
}

func (r *repository) Deactivate(ctx context.Context, id uint64) error {
	return r.DB(ctx).Model(&models.IncomingShipment{}).Where("id = ?", id).Update("is_active", false).Error
}
