package models

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

// OutgoingShipment is a goods-out request awaiting or past approval ("barang keluar").
type OutgoingShipment struct {
	ID              uint64               `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionNo   string               `gorm:"column:transaction_no;type:varchar(50);not null;uniqueIndex:uq_outgoing_shipments_transaction_no"`
	TransactionDate time.Time            `gorm:"column:transaction_date;not null"`
	Recipient       string               `gorm:"column:recipient;type:varchar(200);not null;default:''"`
	Purpose         string               `gorm:"column:purpose;type:text;not null;default:''"`
	Status          enums.ShipmentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	RequestedBy     uint64               `gorm:"column:requested_by;not null"`
	ApproverID      *uint64              `gorm:"column:approver_id"`
	DecidedAt       *time.Time           `gorm:"column:decided_at"`
	IsActive        bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Lines []OutgoingShipmentLine `gorm:"foreignKey:ShipmentID"`
}

// OutgoingShipmentLine consumes a quantity of an item and, for serialised goods,
// exactly one serial unit. A unit can back at most one line.
type OutgoingShipmentLine struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	ShipmentID   uint64  `gorm:"column:shipment_id;not null;index"`
	ItemID       uint64  `gorm:"column:item_id;not null;index"`
	SerialUnitID *uint64 `gorm:"column:serial_unit_id;uniqueIndex:uq_outgoing_lines_serial_unit"`
	Quantity     int     `gorm:"column:quantity;not null;default:1"`

	Item       *Item       `gorm:"foreignKey:ItemID"`
	SerialUnit *SerialUnit `gorm:"foreignKey:SerialUnitID"`
}
