package models

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

// User represents a warehouse operator account.
type User struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string         `gorm:"column:username;type:varchar(50);not null;uniqueIndex:uq_users_username"`
	Email        string         `gorm:"column:email;type:varchar(200);not null;uniqueIndex:uq_users_email"`
	FullName     string         `gorm:"column:full_name;type:varchar(200);not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:varchar(20);not null;default:'staff'"`
	JobType      string         `gorm:"column:job_type;type:varchar(100);not null;default:''"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
