package goodsout

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists outgoing shipments and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.OutgoingShipment) error
	FindActive(ctx context.Context, id uint64) (*models.OutgoingShipment, error)
	FindActiveForDecision(ctx context.Context, id uint64) (*models.OutgoingShipment, error)
	List(ctx context.Context, q listQuery) ([]models.OutgoingShipment, error)
	TransactionNoTaken(ctx context.Context, no string) (bool, error)
	CountActiveItems(ctx context.Context, ids []uint64) (int64, error)
	FindReceivedUnits(ctx context.Context, ids []uint64) ([]models.SerialUnit, error)
	AllocatedUnitIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	TransitionStatus(ctx context.Context, t transition) (bool, error)
	DeleteLines(ctx context.Context, shipmentID uint64) error
	Deactivate(ctx context.Context, id uint64) error
}

type listQuery struct {
	status   enums.ShipmentStatus
	search   string
	cursorID uint64
	limit    int
}

// transition moves one shipment from -> to, recording who decided and when.
type transition struct {
	id         uint64
	from       enums.ShipmentStatus
	to         enums.ShipmentStatus
	approverID uint64
	at         time.Time
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

func (r *repository) Create(ctx context.Context, shipment *models.OutgoingShipment) error {
	return r.DB(ctx).Create(shipment).Error
}

func (r *repository) FindActive(ctx context.Context, id uint64) (*models.OutgoingShipment, error) {
	var shipment models.OutgoingShipment
	err := r.DB(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Item").
		Preload("Lines.SerialUnit").
		Where("id = ? AND is_active = ?", id, true).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// FindActiveForDecision locks the shipment row on Postgres so a concurrent
// decision waits for this transaction.
func (r *repository) FindActiveForDecision(ctx context.Context, id uint64) (*models.OutgoingShipment, error) {
	var shipment models.OutgoingShipment
	err := repo.ForUpdate(r.DB(ctx)).
		Where("id = ? AND is_active = ?", id, true).
		First(&shipment).Error
	if err != nil {
		return nil, err
	}
	var lines []models.OutgoingShipmentLine
	if err := r.DB(ctx).Where("shipment_id = ?", id).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	shipment.Lines = lines
	return &shipment, nil
}

func (r *repository) List(ctx context.Context, q listQuery) ([]models.OutgoingShipment, error) {
	query := r.DB(ctx).Preload("Lines").Where("is_active = ?", true)
	if q.status != "" {
		query = query.Where("status = ?", q.status)
	}
	if q.search != "" {
		like := "%" + strings.ToLower(q.search) + "%"
		query = query.Where("(LOWER(transaction_no) LIKE ? OR LOWER(recipient) LIKE ?)", like, like)
	}
	if q.cursorID > 0 {
		query = query.Where("id < ?", q.cursorID)
	}
	var rows []models.OutgoingShipment
	if err := query.Order("id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) TransactionNoTaken(ctx context.Context, no string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.OutgoingShipment{}).Where("transaction_no = ?", no).Count(&count).Error
	return count > 0, err
}

func (r *repository) CountActiveItems(ctx context.Context, ids []uint64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Item{}).Where("id IN ? AND is_active = ?", ids, true).Count(&count).Error
	return count, err
}

// FindReceivedUnits returns the requested units that belong to an active goods-in.
func (r *repository) FindReceivedUnits(ctx context.Context, ids []uint64) ([]models.SerialUnit, error) {
	var units []models.SerialUnit
	err := r.DB(ctx).
		Table("serial_units AS su").
		Select("su.*").
		Joins("JOIN incoming_shipment_lines isl ON isl.id = su.incoming_line_id").
		Joins("JOIN incoming_shipments ish ON ish.id = isl.shipment_id AND ish.is_active = ?", true).
		Where("su.id IN ?", ids).
		Find(&units).Error
	return units, err
}

func (r *repository) AllocatedUnitIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	var allocated []uint64
	err := r.DB(ctx).Model(&models.OutgoingShipmentLine{}).
		Where("serial_unit_id IN ?", ids).
		Order("serial_unit_id ASC").
		Pluck("serial_unit_id", &allocated).Error
	return allocated, err
}

// TransitionStatus applies the status change only if the row still holds t.from.
// It reports false when another writer got there first.
func (r *repository) TransitionStatus(ctx context.Context, t transition) (bool, error) {
	res := r.DB(ctx).Model(&models.OutgoingShipment{}).
		Where("id = ? AND status = ? AND is_active = ?", t.id, t.from, true).
		Updates(map[string]any{
			"status":      t.to,
			"approver_id": t.approverID,
			"decided_at":  t.at,
			"updated_at":  t.at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) DeleteLines(ctx context.Context, shipmentID uint64) error {
	return r.DB(ctx).Where("shipment_id = ?", shipmentID).Delete(&models.OutgoingShipmentLine{}).Error
}

func (r *repository) Deactivate(ctx context.Context, id uint64) error {
	return r.DB(ctx).Model(&models.OutgoingShipment{}).Where("id = ?", id).Update("is_active", false).Error
}
