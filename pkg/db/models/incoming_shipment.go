package models

import (
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/enums"
)

// IncomingShipment records goods received from a supplier ("barang masuk").
type IncomingShipment struct {
	ID           uint64                       `gorm:"column:id;primaryKey;autoIncrement"`
	ArrivalCode  string                       `gorm:"column:arrival_code;type:varchar(50);not null;uniqueIndex:uq_incoming_shipments_arrival_code"`
	ArrivalDate  time.Time                    `gorm:"column:arrival_date;not null"`
	SupplierName string                       `gorm:"column:supplier_name;type:varchar(200);not null"`
	FormNumber   string                       `gorm:"column:form_number;type:varchar(50);not null;default:''"`
	Status       enums.IncomingShipmentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	Notes        string                       `gorm:"column:notes;type:text;not null;default:''"`
	CreatedBy    uint64                       `gorm:"column:created_by;not null"`
	IsActive     bool                         `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                    `gorm:"column:updated_at;autoUpdateTime"`

	Lines []IncomingShipmentLine `gorm:"foreignKey:ShipmentID"`
}

// IncomingShipmentLine is one item row of an incoming shipment.
type IncomingShipmentLine struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ShipmentID uint64 `gorm:"column:shipment_id;not null;index"`
	ItemID     uint64 `gorm:"column:item_id;not null;index"`
	Quantity   int    `gorm:"column:quantity;not null"`

	Item  *Item        `gorm:"foreignKey:ItemID"`
	Units []SerialUnit `gorm:"foreignKey:IncomingLineID"`
}

// SerialUnit is one physical unit received on an incoming line ("no seri").
type SerialUnit struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	IncomingLineID uint64    `gorm:"column:incoming_line_id;not null;index"`
	ItemID         uint64    `gorm:"column:item_id;not null;index"`
	SerialNumber   string    `gorm:"column:serial_number;type:varchar(100);not null;uniqueIndex:uq_serial_units_serial_number"`
	Location       string    `gorm:"column:location;type:varchar(100);not null;default:''"`
	Notes          string    `gorm:"column:notes;type:text;not null;default:''"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
