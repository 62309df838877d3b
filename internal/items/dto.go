package items

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
)

// ItemDTO is the API representation of an item.
type ItemDTO struct {
	ID           uint64    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Stock        int       `json:"stock"`
	MinStock     int       `json:"minStock"`
	BelowMinimum bool      `json:"belowMinimum"`
	Location     string    `json:"location"`
	CategoryID   *uint64   `json:"categoryId,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ItemOption is the compact autocomplete row.
type ItemOption struct {
	ID    uint64 `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Stock int    `json:"stock"`
}

// SerialUnitDTO is an available serial unit for goods-out selection.
type SerialUnitDTO struct {
	ID           uint64 `json:"id"`
	SerialNumber string `json:"serialNumber"`
	ItemID       uint64 `json:"itemId"`
	ItemCode     string `json:"itemCode"`
	ItemName     string `json:"itemName"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// ItemListResult is a page of items.
type ItemListResult struct {
	Items  []ItemDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

func FromModel(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}
	dto := &ItemDTO{
		ID:           item.ID,
		Code:         item.Code,
		Name:         item.Name,
		Unit:         item.Unit,
		Stock:        item.Stock,
		MinStock:     item.MinStock,
		BelowMinimum: item.BelowMinimum(),
		Location:     item.Location,
		CategoryID:   item.CategoryID,
		IsActive:     item.IsActive,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if item.Category != nil {
		dto.CategoryName = item.Category.Name
	}
	return dto
}

func optionFromModel(item models.Item) ItemOption {
	return ItemOption{ID: item.ID, Code: item.Code, Name: item.Name, Unit: item.Unit, Stock: item.Stock}
}

func serialFromRecord(r SerialUnitRecord) SerialUnitDTO {
	return SerialUnitDTO(r)
}
