package models

import "time"

// Item is a stock keeping unit. Stock is only mutated by goods-in and goods-out flows.
type Item struct {
	ID         uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	Code       string        `gorm:"column:code;type:varchar(50);not null;uniqueIndex:uq_items_code"`
	Name       string        `gorm:"column:name;type:varchar(200);not null"`
	Unit       string        `gorm:"column:unit;type:varchar(30);not null"`
	Stock      int           `gorm:"column:stock;not null;default:0;check:chk_items_stock_non_negative,stock >= 0"`
	MinStock   int           `gorm:"column:min_stock;not null;default:0"`
	Location   string        `gorm:"column:location;type:varchar(100);not null;default:''"`
	CategoryID *uint64       `gorm:"column:category_id;index"`
	Category   *ItemCategory `gorm:"foreignKey:CategoryID"`
	IsActive   bool          `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

// BelowMinimum reports whether the item needs restocking.
func (i Item) BelowMinimum() bool {
	return i.Stock < i.MinStock
}
