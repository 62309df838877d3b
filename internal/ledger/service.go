package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Movement describes one stock change and the document that caused it.
type Movement struct {
	ItemID        uint64
	Type          enums.StockTransactionType
	Quantity      int
	ReferenceType string
	ReferenceID   uint64
	ActorUserID   uint64
}

// ListParams filters the ledger listing.
type ListParams struct {
	ItemID *uint64
	Type   string
	pagination.Params
}

// ListResult is a page of ledger entries.
type ListResult struct {
	Items  []models.StockTransaction
	Cursor string
}

// Service applies stock movements and reads the ledger.
type Service interface {
	// Apply mutates the item's stock and appends a ledger row using tx. It must be
	// called inside the caller's transaction so both writes commit together.
	Apply(ctx context.Context, tx *gorm.DB, m Movement) (*models.StockTransaction, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Apply(ctx context.Context, tx *gorm.DB, m Movement) (*models.StockTransaction, error) {
	if m.ItemID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if m.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !m.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock transaction type %q", m.Type))
	}
	if m.ReferenceType == "" || m.ReferenceID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock movement reference is required")
	}

	repo := s.repo.WithTx(tx)

	var (
		applied bool
		err     error
	)
	if m.Type == enums.StockTransactionIn {
		applied, err = repo.Increment(ctx, m.ItemID, m.Quantity)
	} else {
		applied, err = repo.Decrement(ctx, m.ItemID, m.Quantity)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item stock")
	}

	item, err := repo.FindItem(ctx, m.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found", m.ItemID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if !applied {
		if m.Type == enums.StockTransactionIn {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("item %s is inactive", item.Code))
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for item %s", item.Code)).
			WithDetails(map[string]any{"itemId": item.ID, "available": item.Stock, "requested": m.Quantity})
	}

	txn := &models.StockTransaction{
		ItemID:        m.ItemID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		StockAfter:    item.Stock,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		ActorUserID:   m.ActorUserID,
	}
	if err := repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock transaction")
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	q := listQuery{
		itemID: params.ItemID,
		limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.Type != "" {
		t, err := enums.ParseStockTransactionType(params.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
		q.txType = t
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q.cursorID = cursor.ID
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock transactions")
	}
	page, next := pagination.Trim(rows, params.Limit, func(t models.StockTransaction) uint64 { return t.ID })
	return &ListResult{Items: page, Cursor: next}, nil
}
