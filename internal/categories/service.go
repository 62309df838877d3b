package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes category maintenance with the rename and delete guards.
type Service interface {
	Create(ctx context.Context, input Input) (*models.ItemCategory, error)
	List(ctx context.Context, search string) ([]models.ItemCategory, error)
	Get(ctx context.Context, id uint64) (*models.ItemCategory, error)
	Update(ctx context.Context, id uint64, input Input) (*models.ItemCategory, error)
	Delete(ctx context.Context, id uint64) error
}

// Input carries the editable category fields.
type Input struct {
	Name        string
	Description string
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.ItemCategory, error) {
	input = input.normalized()
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	var created *models.ItemCategory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureNameFree(ctx, repo, input.Name, 0); err != nil {
			return err
		}
		category := &models.ItemCategory{Name: input.Name, Description: input.Description, IsActive: true}
		if err := repo.Create(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
		}
		created = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) List(ctx context.Context, search string) ([]models.ItemCategory, error) {
	rows, err := s.repo.ListActive(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uint64) (*models.ItemCategory, error) {
	return findActive(ctx, s.repo, id)
}

// Update renames a category after checking the new name is unused among active rows.
func (s *service) Update(ctx context.Context, id uint64, input Input) (*models.ItemCategory, error) {
	input = input.normalized()
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	var updated *models.ItemCategory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := findActive(ctx, repo, id); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, repo, input.Name, id); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, input.Name, input.Description); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
		}
		category, err := findActive(ctx, repo, id)
		if err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a category that no active item references.
func (s *service) Delete(ctx context.Context, id uint64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := findActive(ctx, repo, id); err != nil {
			return err
		}
		inUse, err := repo.CountActiveItems(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category items")
		}
		if inUse > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("category is still in use by %d item(s)", inUse)).
				WithDetails(map[string]any{"itemCount": inUse})
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
}

func findActive(ctx context.Context, repo Repository, id uint64) (*models.ItemCategory, error) {
	category, err := repo.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func ensureNameFree(ctx context.Context, repo Repository, name string, excludeID uint64) error {
	taken, err := repo.ActiveNameTaken(ctx, name, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "category name already exists")
	}
	return nil
}

func (i Input) normalized() Input {
	return Input{
		Name:        strings.TrimSpace(i.Name),
		Description: strings.TrimSpace(i.Description),
	}
}
