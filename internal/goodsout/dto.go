package goodsout

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

type LineDTO struct {
	ID           uint64  `json:"id"`
	ItemID       uint64  `json:"itemId"`
	ItemCode     string  `json:"itemCode,omitempty"`
	ItemName     string  `json:"itemName,omitempty"`
	Quantity     int     `json:"quantity"`
	SerialUnitID *uint64 `json:"serialUnitId,omitempty"`
	SerialNumber string  `json:"serialNumber,omitempty"`
}

// ShipmentDTO is the API shape of a goods-out document.
type ShipmentDTO struct {
	ID              uint64               `json:"id"`
	TransactionNo   string               `json:"transactionNo"`
	TransactionDate time.Time            `json:"transactionDate"`
	Recipient       string               `json:"recipient"`
	Purpose         string               `json:"purpose"`
	Status          enums.ShipmentStatus `json:"status"`
	RequestedBy     uint64               `json:"requestedBy"`
	ApproverID      *uint64              `json:"approverId"`
	DecidedAt       *time.Time           `json:"decidedAt"`
	TotalQty        int                  `json:"totalQuantity"`
	Lines           []LineDTO            `json:"lines,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// DecisionResult is returned by an approve or reject call.
type DecisionResult struct {
	ID            uint64               `json:"id"`
	TransactionNo string               `json:"transactionNo"`
	Status        enums.ShipmentStatus `json:"status"`
	ApproverID    uint64               `json:"approverId"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type ListResult struct {
	Items  []ShipmentDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

func FromModel(s *models.OutgoingShipment, includeLines bool) *ShipmentDTO {
	if s == nil {
		return nil
	}
	dto := &ShipmentDTO{
		ID:              s.ID,
		TransactionNo:   s.TransactionNo,
		TransactionDate: s.TransactionDate,
		Recipient:       s.Recipient,
		Purpose:         s.Purpose,
		Status:          s.Status,
		RequestedBy:     s.RequestedBy,
		ApproverID:      s.ApproverID,
		DecidedAt:       s.DecidedAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	for _, line := range s.Lines {
		dto.TotalQty += line.Quantity
		if !includeLines {
			continue
		}
		ld := LineDTO{
			ID:           line.ID,
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			SerialUnitID: line.SerialUnitID,
		}
		if line.Item != nil {
			ld.ItemCode = line.Item.Code
			ld.ItemName = line.Item.Name
		}
		if line.SerialUnit != nil {
			ld.SerialNumber = line.SerialUnit.SerialNumber
		}
		dto.Lines = append(dto.Lines, ld)
	}
	return dto
}
