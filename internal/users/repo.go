package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/gudang-backend/internal/repo"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

type listQuery struct {
	search   string
	role     enums.UserRole
	cursorID uint64
	limit    int
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	inactive := !user.IsActive
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	// gorm skips zero values for columns with a default, so false needs a second write.
	if inactive {
		if err := r.DB(ctx).Model(user).UpdateColumn("is_active", false).Error; err != nil {
			return nil, err
		}
		user.IsActive = false
	}
	return user, nil
}

// FindByLogin retrieves the user whose username or email matches identifier.
func (r *Repository) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	lowered := strings.ToLower(identifier)
	var user models.User
	err := r.DB(ctx).
		Where("LOWER(username) = ? OR LOWER(email) = ?", lowered, lowered).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Taken reports whether the username or email is already registered.
func (r *Repository) Taken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.User{}).
		Where("LOWER(username) = ? OR LOWER(email) = ?", strings.ToLower(username), strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, q listQuery) ([]models.User, error) {
	query := r.DB(ctx)
	if q.search != "" {
		like := "%" + strings.ToLower(q.search) + "%"
		query = query.Where("(LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?)", like, like, like)
	}
	if q.role != "" {
		query = query.Where("role = ?", q.role)
	}
	if q.cursorID > 0 {
		query = query.Where("id < ?", q.cursorID)
	}
	var rows []models.User
	if err := query.Order("id DESC").Limit(q.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update writes the given columns. A map keeps false and empty values.
func (r *Repository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// CountActiveAdmins counts active admins other than excludeID.
func (r *Repository) CountActiveAdmins(ctx context.Context, excludeID uint64) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id <> ?", enums.UserRoleAdmin, true, excludeID).
		Count(&count).Error
	return count, err
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash replaces the stored hash, used when argon params change.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}
