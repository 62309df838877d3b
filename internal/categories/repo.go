package categories

import (
	"context"
	"strings"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes item category persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, category *models.ItemCategory) error
	FindActive(ctx context.Context, id uint64) (*models.ItemCategory, error)
	ListActive(ctx context.Context, search string) ([]models.ItemCategory, error)
	ActiveNameTaken(ctx context.Context, name string, excludeID uint64) (bool, error)
	CountActiveItems(ctx context.Context, categoryID uint64) (int64, error)
	Update(ctx context.Context, id uint64, name, description string) error
	Deactivate(ctx context.Context, id uint64) error
}

type repository struct {
	repo.Base
}

// NewRepository constructs a category repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, category *models.ItemCategory) error {
	return r.DB(ctx).Create(category).Error
}

func (r *repository) FindActive(ctx context.Context, id uint64) (*models.ItemCategory, error) {
	var category models.ItemCategory
	if err := r.DB(ctx).Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListActive(ctx context.Context, search string) ([]models.ItemCategory, error) {
	query := r.DB(ctx).Where("is_active = ?", true)
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var rows []models.ItemCategory
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveNameTaken compares names case-insensitively against active rows other than excludeID.
func (r *repository) ActiveNameTaken(ctx context.Context, name string, excludeID uint64) (bool, error) {
	query := r.DB(ctx).Model(&models.ItemCategory{}).
		Where("is_active = ? AND LOWER(name) = ?", true, strings.ToLower(name))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountActiveItems(ctx context.Context, categoryID uint64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Item{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Count(&count).Error
	return count, err
}

func (r *repository) Update(ctx context.Context, id uint64, name, description string) error {
	return r.DB(ctx).Model(&models.ItemCategory{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "description": description}).Error
}

func (r *repository) Deactivate(ctx context.Context, id uint64) error {
	return r.DB(ctx).Model(&models.ItemCategory{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
