package items

import (
	"context"
	"strings"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles item and serial unit persistence.
type Repository struct {
	repo.Base
}

type listQuery struct {
	search     string
	categoryID *uint64
	lowStock   bool
	cursorID   uint64
	limit      int
}

type serialQuery struct {
	itemID *uint64
	search string
	limit  int
}

// SerialUnitRecord is an available serial unit joined with its item.
type SerialUnitRecord struct {
	ID           uint64
	SerialNumber string
	ItemID       uint64
	ItemCode     string
	ItemName     string
	Location     string
	Notes        string
}

// NewRepository binds a repository to the shared connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository that issues queries on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

// FindActive loads an active item with its category.
func (r *Repository) FindActive(ctx context.Context, id uint64) (*models.Item, error) {
	var item models.Item
	err := r.DB(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CodeTaken(ctx context.Context, code string, excludeID uint64) (bool, error) {
	query := r.DB(ctx).Model(&models.Item{}).Where("LOWER(code) = ?", strings.ToLower(code))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CategoryActive(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ItemCategory{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Item, error) {
	query := r.DB(ctx).Preload("Category").Where("is_active = ?", true)
	if q.search != "" {
		like := "%" + strings.ToLower(q.search) + "%"
		query = query.Where("(LOWER(code) LIKE ? OR LOWER(name) LIKE ?)", like, like)
	}
	if q.categoryID != nil {
		query = query.Where("category_id = ?", *q.categoryID)
	}
	if q.lowStock {
		query = query.Where("stock < min_stock")
	}
	if q.cursorID > 0 {
		query = query.Where("id < ?", q.cursorID)
	}

	var rows []models.Item
	if err := query.Order("id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches code prefixes and name substrings for autocomplete.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]models.Item, error) {
	lowered := strings.ToLower(term)
	var rows []models.Item
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Where("(LOWER(code) LIKE ? OR LOWER(name) LIKE ?)", lowered+"%", "%"+lowered+"%").
		Order("code ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.DB(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Deactivate(ctx context.Context, id uint64) error {
	return r.DB(ctx).Model(&models.Item{}).Where("id = ?", id).Update("is_active", false).Error
}

// AvailableSerialUnits returns units of active items, received on active
// incoming shipments, that no outgoing line references.
func (r *Repository) AvailableSerialUnits(ctx context.Context, q serialQuery) ([]SerialUnitRecord, error) {
	query := r.DB(ctx).
		Table("serial_units AS su").
		Select(`su.id, su.serial_number, su.item_id, i.code AS item_code, i.name AS item_name,
			su.location, su.notes`).
		Joins("JOIN items i ON i.id = su.item_id AND i.is_active = ?", true).
		Joins("JOIN incoming_shipment_lines isl ON isl.id = su.incoming_line_id").
		Joins("JOIN incoming_shipments ish ON ish.id = isl.shipment_id AND ish.is_active = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM outgoing_shipment_lines ol WHERE ol.serial_unit_id = su.id)")
	if q.itemID != nil {
		query = query.Where("su.item_id = ?", *q.itemID)
	}
	if q.search != "" {
		query = query.Where("LOWER(su.serial_number) LIKE ?", "%"+strings.ToLower(q.search)+"%")
	}

	var rows []SerialUnitRecord
	if err := query.Order("su.serial_number ASC").Limit(q.limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
