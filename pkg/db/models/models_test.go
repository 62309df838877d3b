package models_test

import (
	"testing"
	"time"

	"github.com/angelmondragon/gudang-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

func TestOutgoingLineSerialUnitIsUnique(t *testing.T) {
	db := dbtest.Open(t)

	item := models.Item{Code: "BRG-1", Name: "Router", Unit: "pcs"}
	require.NoError(t, db.Create(&item).Error)

	in := models.IncomingShipment{ArrivalCode: "BM-1", ArrivalDate: time.Now(), SupplierName: "PT Sumber", Status: enums.IncomingShipmentStatusReceived, CreatedBy: 1}
	require.NoError(t, db.Create(&in).Error)
	line := models.IncomingShipmentLine{ShipmentID: in.ID, ItemID: item.ID, Quantity: 1}
	require.NoError(t, db.Create(&line).Error)
	unit := models.SerialUnit{IncomingLineID: line.ID, ItemID: item.ID, SerialNumber: "SN-001"}
	require.NoError(t, db.Create(&unit).Error)

	out := models.OutgoingShipment{TransactionNo: "BK-1", TransactionDate: time.Now(), Status: enums.ShipmentStatusPending, RequestedBy: 1}
	require.NoError(t, db.Create(&out).Error)

	require.NoError(t, db.Create(&models.OutgoingShipmentLine{ShipmentID: out.ID, ItemID: item.ID, SerialUnitID: &unit.ID, Quantity: 1}).Error)
	err := db.Create(&models.OutgoingShipmentLine{ShipmentID: out.ID, ItemID: item.ID, SerialUnitID: &unit.ID, Quantity: 1}).Error
	require.Error(t, err, "a serial unit may back only one outgoing line")

	// lines without a serial unit do not collide
	require.NoError(t, db.Create(&models.OutgoingShipmentLine{ShipmentID: out.ID, ItemID: item.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.OutgoingShipmentLine{ShipmentID: out.ID, ItemID: item.ID, Quantity: 3}).Error)
}

func TestItemStockCannotGoNegative(t *testing.T) {
	db := dbtest.Open(t)

	item := models.Item{Code: "BRG-2", Name: "Kabel", Unit: "m", Stock: 1}
	require.NoError(t, db.Create(&item).Error)

	err := db.Exec("UPDATE items SET stock = stock - 5 WHERE id = ?", item.ID).Error
	require.Error(t, err)
	require.False(t, models.Item{Stock: 5, MinStock: 2}.BelowMinimum())
	require.True(t, models.Item{Stock: 1, MinStock: 2}.BelowMinimum())
}
