package models

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

// Reference types written to StockTransaction.ReferenceType.
const (
	ReferenceIncomingShipment = "incoming_shipment"
	ReferenceOutgoingShipment = "outgoing_shipment"
)

// StockTransaction is an append-only stock movement. Quantity is always positive;
// Type carries the direction.
type StockTransaction struct {
	ID            uint64                     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID        uint64                     `gorm:"column:item_id;not null;index"`
	Type          enums.StockTransactionType `gorm:"column:type;type:varchar(20);not null"`
	Quantity      int                        `gorm:"column:quantity;not null"`
	StockAfter    int                        `gorm:"column:stock_after;not null"`
	ReferenceType string                     `gorm:"column:reference_type;type:varchar(40);not null"`
	ReferenceID   uint64                     `gorm:"column:reference_id;not null"`
	ActorUserID   uint64                     `gorm:"column:actor_user_id;not null"`
	CreatedAt     time.Time                  `gorm:"column:created_at;autoCreateTime;index"`
}
