package ledger

import (
	"context"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages item stock counters and the stock transaction ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, itemID uint64, qty int) (bool, error)
	Decrement(ctx context.Context, itemID uint64, qty int) (bool, error)
	FindItem(ctx context.Context, itemID uint64) (*models.Item, error)
	Create(ctx context.Context, txn *models.StockTransaction) error
	List(ctx context.Context, q listQuery) ([]models.StockTransaction, error)
}

type listQuery struct {
	itemID   *uint64
	txType   enums.StockTransactionType
	cursorID uint64
	limit    int
}

type repository struct {
	repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

// Increment adds qty to an active item's stock. It reports false when no active item matched.
func (r *repository) Increment(ctx context.Context, itemID uint64, qty int) (bool, error) {
	res := r.DB(ctx).Exec(
		"UPDATE items SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_active = ?",
		qty, itemID, true,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Decrement subtracts qty only when enough stock remains. It reports false when the
// guard rejected the update.
func (r *repository) Decrement(ctx context.Context, itemID uint64, qty int) (bool, error) {
	res := r.DB(ctx).Exec(
		"UPDATE items SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock >= ?",
		qty, itemID, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uint64) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, txn *models.StockTransaction) error {
	return r.DB(ctx).Create(txn).Error
}

func (r *repository) List(ctx context.Context, q listQuery) ([]models.StockTransaction, error) {
	query := r.DB(ctx).Model(&models.StockTransaction{})
	if q.itemID != nil {
		query = query.Where("item_id = ?", *q.itemID)
	}
	if q.txType != "" {
		query = query.Where("type = ?", q.txType)
	}
	if q.cursorID > 0 {
		query = query.Where("id < ?", q.cursorID)
	}

	var rows []models.StockTransaction
	if err := query.Order("id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
