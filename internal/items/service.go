package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	DefaultLookupLimit = 20
	MaxLookupLimit     = 100
)

// Service exposes item maintenance and the lookup helpers used by goods-out forms.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	Get(ctx context.Context, id uint64) (*ItemDTO, error)
	List(ctx context.Context, input ListItemsInput) (*ItemListResult, error)
	Update(ctx context.Context, id uint64, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uint64) error
	Search(ctx context.Context, term string, limit int) ([]ItemOption, error)
	SerialSearch(ctx context.Context, input SerialSearchInput) ([]SerialUnitDTO, error)
}

// CreateItemInput holds the validated payload to create an item. Stock starts at
// zero and only moves through goods-in and goods-out.
type CreateItemInput struct {
	Code       string
	Name       string
	Unit       string
	MinStock   int
	Location   string
	CategoryID *uint64
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Code       *string
	Name       *string
	Unit       *string
	MinStock   *int
	Location   *string
	CategoryID *uint64
}

type ListItemsInput struct {
	Search     string
	CategoryID *uint64
	LowStock   bool
	Pagination pagination.Params
}

// SerialSearchInput filters the available serial unit lookup.
type SerialSearchInput struct {
	ItemID *uint64
	Search string
	Limit  int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds an item service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	unit := strings.TrimSpace(input.Unit)
	if code == "" || name == "" || unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code, name and unit are required")
	}
	if input.MinStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minStock must be zero or greater")
	}

	var created *models.Item
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureCodeFree(ctx, repo, code, 0); err != nil {
			return err
		}
		if err := ensureCategory(ctx, repo, input.CategoryID); err != nil {
			return err
		}
		item := &models.Item{
			Code:       code,
			Name:       name,
			Unit:       unit,
			MinStock:   input.MinStock,
			Location:   strings.TrimSpace(input.Location),
			CategoryID: input.CategoryID,
			IsActive:   true,
		}
		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		loaded, err := findActive(ctx, repo, item.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uint64) (*ItemDTO, error) {
	item, err := findActive(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context, input ListItemsInput) (*ItemListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	q := listQuery{
		search:     strings.TrimSpace(input.Search),
		categoryID: input.CategoryID,
		lowStock:   input.LowStock,
		limit:      pagination.LimitWithBuffer(input.Pagination.Limit),
	}
	if cursor != nil {
		q.cursorID = cursor.ID
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	page, next := pagination.Trim(rows, input.Pagination.Limit, func(i models.Item) uint64 { return i.ID })

	out := make([]ItemDTO, 0, len(page))
	for i := range page {
		out = append(out, *FromModel(&page[i]))
	}
	return &ItemListResult{Items: out, Cursor: next}, nil
}

func (s *service) Update(ctx context.Context, id uint64, input UpdateItemInput) (*ItemDTO, error) {
	var updated *models.Item
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := findActive(ctx, repo, id); err != nil {
			return err
		}

		fields := map[string]any{}
		if input.Code != nil {
			code := strings.TrimSpace(*input.Code)
			if code == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "code cannot be empty")
			}
			if err := ensureCodeFree(ctx, repo, code, id); err != nil {
				return err
			}
			fields["code"] = code
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			fields["name"] = name
		}
		if input.Unit != nil {
			unit := strings.TrimSpace(*input.Unit)
			if unit == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be empty")
			}
			fields["unit"] = unit
		}
		if input.MinStock != nil {
			if *input.MinStock < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "minStock must be zero or greater")
			}
			fields["min_stock"] = *input.MinStock
		}
		if input.Location != nil {
			fields["location"] = strings.TrimSpace(*input.Location)
		}
		if input.CategoryID != nil {
			if err := ensureCategory(ctx, repo, input.CategoryID); err != nil {
				return err
			}
			fields["category_id"] = *input.CategoryID
		}

		if len(fields) > 0 {
			if err := repo.Update(ctx, id, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
			}
		}
		item, err := findActive(ctx, repo, id)
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete soft-deletes an item once its stock has been fully issued.
func (s *service) Delete(ctx context.Context, id uint64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := findActive(ctx, repo, id)
		if err != nil {
			return err
		}
		if item.Stock > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("item %s still has %d %s in stock", item.Code, item.Stock, item.Unit))
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		return nil
	})
}

func (s *service) Search(ctx context.Context, term string, limit int) ([]ItemOption, error) {
	rows, err := s.repo.Search(ctx, strings.TrimSpace(term), lookupLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}
	out := make([]ItemOption, 0, len(rows))
	for _, row := range rows {
		out = append(out, optionFromModel(row))
	}
	return out, nil
}

// SerialSearch lists serial units not yet referenced by any outgoing line,
// ordered by serial number.
func (s *service) SerialSearch(ctx context.Context, input SerialSearchInput) ([]SerialUnitDTO, error) {
	rows, err := s.repo.AvailableSerialUnits(ctx, serialQuery{
		itemID: input.ItemID,
		search: strings.TrimSpace(input.Search),
		limit:  lookupLimit(input.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search serial units")
	}
	out := make([]SerialUnitDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, serialFromRecord(row))
	}
	return out, nil
}

func lookupLimit(limit int) int {
	if limit <= 0 {
		return DefaultLookupLimit
	}
	if limit > MaxLookupLimit {
		return MaxLookupLimit
	}
	return limit
}

func findActive(ctx context.Context, repo *Repository, id uint64) (*models.Item, error) {
	item, err := repo.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func ensureCodeFree(ctx context.Context, repo *Repository, code string, excludeID uint64) error {
	taken, err := repo.CodeTaken(ctx, code, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item code")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("item code %s already exists", code))
	}
	return nil
}

func ensureCategory(ctx context.Context, repo *Repository, id *uint64) error {
	if id == nil {
		return nil
	}
	ok, err := repo.CategoryActive(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "category not found")
	}
	return nil
}
