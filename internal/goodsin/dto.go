package goodsin

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

type SerialUnitDTO struct {
	ID           uint64 `json:"id"`
	SerialNumber string `json:"serialNumber"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

type LineDTO struct {
	ID       uint64          `json:"id"`
	ItemID   uint64          `json:"itemId"`
	ItemCode string          `json:"itemCode,omitempty"`
	ItemName string          `json:"itemName,omitempty"`
	Quantity int             `json:"quantity"`
	Units    []SerialUnitDTO `json:"serialUnits"`
}

// ShipmentDTO is the API shape of a goods-in document.
type ShipmentDTO struct {
	ID           uint64                       `json:"id"`
	ArrivalCode  string                       `json:"arrivalCode"`
	ArrivalDate  time.Time                    `json:"arrivalDate"`
	SupplierName string                       `json:"supplierName"`
	FormNumber   string                       `json:"formNumber"`
	Status       enums.IncomingShipmentStatus `json:"status"`
	Notes        string                       `json:"notes"`
	CreatedBy    uint64                       `json:"createdBy"`
	TotalQty     int                          `json:"totalQuantity"`
	Lines        []LineDTO                    `json:"lines,omitempty"`
	CreatedAt    time.Time                    `json:"createdAt"`
	UpdatedAt    time.Time                    `json:"updatedAt"`
}

type ListResult struct {
	Items  []ShipmentDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

// FromModel maps a shipment; includeLines controls whether line detail is emitted.
func FromModel(s *models.IncomingShipment, includeLines bool) *ShipmentDTO {
	if s == nil {
		return nil
	}
	dto := &ShipmentDTO{
		ID:           s.ID,
		ArrivalCode:  s.ArrivalCode,
		ArrivalDate:  s.ArrivalDate,
		SupplierName: s.SupplierName,
		FormNumber:   s.FormNumber,
		Status:       s.Status,
		Notes:        s.Notes,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for _, line := range s.Lines {
		dto.TotalQty += line.Quantity
		if !includeLines {
			continue
		}
		ld := LineDTO{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Units:    make([]SerialUnitDTO, 0, len(line.Units)),
		}
		if line.Item != nil {
			ld.ItemCode = line.Item.Code
			ld.ItemName = line.Item.Name
		}
		for _, u := range line.Units {
			ld.Units = append(ld.Units, SerialUnitDTO{
				ID:           u.ID,
				SerialNumber: u.SerialNumber,
				Location:     u.Location,
				Notes:        u.Notes,
			})
		}
		dto.Lines = append(dto.Lines, ld)
	}
	return dto
}
