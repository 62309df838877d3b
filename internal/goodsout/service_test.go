package goodsout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/gudang-backend/internal/ledger"
	pkgdb "github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/metrics"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const approverID uint64 = 3

type fixture struct {
	db      *gorm.DB
	svc     Service
	reg     *prometheus.Registry
	laptop  *models.Item
	cable   *models.Item
	units   []models.SerialUnit
	fixedAt time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc, err := NewService(NewRepository(conn), ledgerSvc, pkgdb.NewFromGorm(conn), metrics.NewApprovalMetrics(reg))
	require.NoError(t, err)
	fixedAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time { return fixedAt }

	laptop := &models.Item{Code: "LPT-01", Name: "Laptop", Unit: "unit", Stock: 3, IsActive: true}
	cable := &models.Item{Code: "KBL-01", Name: "Kabel UTP", Unit: "roll", Stock: 10, IsActive: true}
	require.NoError(t, conn.Create(laptop).Error)
	require.NoError(t, conn.Create(cable).Error)

	in := &models.IncomingShipment{
		ArrivalCode:  "BM-1",
		ArrivalDate:  fixedAt,
		SupplierName: "PT Sumber",
		Status:       enums.IncomingShipmentStatusReceived,
		CreatedBy:    1,
		IsActive:     true,
		Lines: []models.IncomingShipmentLine{{
			ItemID:   laptop.ID,
			Quantity: 3,
			Units: []models.SerialUnit{
				{ItemID: laptop.ID, SerialNumber: "SN-1"},
				{ItemID: laptop.ID, SerialNumber: "SN-2"},
				{ItemID: laptop.ID, SerialNumber: "SN-3"},
			},
		}},
	}
	require.NoError(t, conn.Create(in).Error)

	return &fixture{
		db:      conn,
		svc:     svc,
		reg:     reg,
		laptop:  laptop,
		cable:   cable,
		units:   in.Lines[0].Units,
		fixedAt: fixedAt,
	}
}

func (f *fixture) stock(t *testing.T, id uint64) int {
	t.Helper()
	var item models.Item
	require.NoError(t, f.db.First(&item, id).Error)
	return item.Stock
}

func (f *fixture) status(t *testing.T, id uint64) enums.ShipmentStatus {
	t.Helper()
	var shipment models.OutgoingShipment
	require.NoError(t, f.db.First(&shipment, id).Error)
	return shipment.Status
}

// seedShipmentSeven inserts placeholders so the pending request gets id 7.
func (f *fixture) seedShipmentSeven(t *testing.T) *ShipmentDTO {
	t.Helper()
	for i := 1; i < 7; i++ {
		require.NoError(t, f.db.Create(&models.OutgoingShipment{
			TransactionNo:   fmt.Sprintf("OLD-%d", i),
			TransactionDate: f.fixedAt,
			Status:          enums.ShipmentStatusRejected,
			RequestedBy:     1,
			IsActive:        true,
		}).Error)
	}
	unitID := f.units[0].ID
	created, err := f.svc.Create(context.Background(), 2, CreateInput{
		Recipient: "Divisi IT",
		Lines: []LineInput{
			{ItemID: f.laptop.ID, SerialUnitID: &unitID},
			{ItemID: f.cable.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, created.ID)
	return created
}

func TestApproveThenReapprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipment := f.seedShipmentSeven(t)

	res, err := f.svc.Decide(ctx, DecisionInput{ShipmentID: 7, Action: "approve", ApproverID: approverID})
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.ID)
	assert.Equal(t, shipment.TransactionNo, res.TransactionNo)
	assert.Equal(t, enums.ShipmentStatusApproved, res.Status)
	assert.Equal(t, approverID, res.ApproverID)
	assert.True(t, res.UpdatedAt.Equal(f.fixedAt))

	assert.Equal(t, 2, f.stock(t, f.laptop.ID))
	assert.Equal(t, 6, f.stock(t, f.cable.ID))

	got, err := f.svc.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, approverID, *got.ApproverID)
	require.NotNil(t, got.DecidedAt)

	var outs int64
	require.NoError(t, f.db.Model(&models.StockTransaction{}).
		Where("type = ? AND reference_id = ?", enums.StockTransactionOut, 7).Count(&outs).Error)
	assert.EqualValues(t, 2, outs)

	for _, action := range []string{"approve", "reject"} {
		_, err = f.svc.Decide(ctx, DecisionInput{ShipmentID: 7, Action: action, ApproverID: approverID})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	}
	assert.Equal(t, 2, f.stock(t, f.laptop.ID))
	assert.Equal(t, 6, f.stock(t, f.cable.ID))
	assert.Equal(t, enums.ShipmentStatusApproved, f.status(t, 7))

	applied := testutil.ToFloat64(metricsDecisions(t, f.reg).WithLabelValues("approve", metrics.OutcomeApplied))
	assert.Equal(t, float64(1), applied)
}

func TestRejectLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedShipmentSeven(t)

	res, err := f.svc.Decide(ctx, DecisionInput{ShipmentID: 7, Action: " Reject ", ApproverID: approverID})
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusRejected, res.Status)

	assert.Equal(t, 3, f.stock(t, f.laptop.ID))
	assert.Equal(t, 10, f.stock(t, f.cable.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.StockTransaction{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = f.svc.Decide(ctx, DecisionInput{ShipmentID: 7, Action: "approve", ApproverID: approverID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, 3, f.stock(t, f.laptop.ID))
}

func TestApproveRollsBackOnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{
		{ItemID: f.laptop.ID, Quantity: 2},
		{ItemID: f.cable.ID, Quantity: 11},
	}})
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, DecisionInput{ShipmentID: created.ID, Action: "approve", ApproverID: approverID})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	assert.Equal(t, 3, f.stock(t, f.laptop.ID), "first line must roll back")
	assert.Equal(t, 10, f.stock(t, f.cable.ID))
	assert.Equal(t, enums.ShipmentStatusPending, f.status(t, created.ID))

	rejected := testutil.ToFloat64(metricsDecisions(t, f.reg).WithLabelValues("approve", metrics.OutcomeRejected))
	assert.Equal(t, float64(1), rejected)
}

func TestDecideUnknownShipment(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Decide(context.Background(), DecisionInput{ShipmentID: 404, Action: "approve", ApproverID: approverID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

type untouchableRepo struct {
	Repository
	t *testing.T
}

func (r untouchableRepo) WithTx(*gorm.DB) Repository {
	r.t.Fatal("repository must not be used")
	return nil
}

type untouchableTx struct{ t *testing.T }

func (u untouchableTx) WithTx(context.Context, func(tx *gorm.DB) error) error {
	u.t.Fatal("transaction must not start")
	return nil
}

type noopLedger struct{ ledger.Service }

func TestDecideRejectsUnknownActionBeforeStoreAccess(t *testing.T) {
	svc, err := NewService(untouchableRepo{t: t}, noopLedger{}, untouchableTx{t: t}, nil)
	require.NoError(t, err)

	for _, action := range []string{"", "approved", "delete"} {
		_, err := svc.Decide(context.Background(), DecisionInput{ShipmentID: 7, Action: action, ApproverID: approverID})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), action)
	}
}

func TestCreateValidatesSerialUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.units[0].ID
	_, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.laptop.ID, SerialUnitID: &first}}})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.laptop.ID, SerialUnitID: &first}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	second := f.units[1].ID
	cases := map[string][]LineInput{
		"no lines":         nil,
		"serial qty > 1":   {{ItemID: f.laptop.ID, Quantity: 2, SerialUnitID: &second}},
		"duplicate serial": {{ItemID: f.laptop.ID, SerialUnitID: &second}, {ItemID: f.laptop.ID, SerialUnitID: &second}},
		"wrong item":       {{ItemID: f.cable.ID, SerialUnitID: &second}},
		"zero quantity":    {{ItemID: f.cable.ID}},
		"unknown item":     {{ItemID: 999, Quantity: 1}},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, 2, CreateInput{Lines: lines})
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestDeleteOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unitID := f.units[2].ID
	pending, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.laptop.ID, SerialUnitID: &unitID}}})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, pending.ID))

	_, err = f.svc.Get(ctx, pending.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	// the unit is free again
	again, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.laptop.ID, SerialUnitID: &unitID}}})
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, DecisionInput{ShipmentID: again.ID, Action: "approve", ApproverID: approverID})
	require.NoError(t, err)
	err = f.svc.Delete(ctx, again.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestListByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []uint64
	for i := 0; i < 3; i++ {
		created, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.cable.ID, Quantity: 1}}})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	_, err := f.svc.Decide(ctx, DecisionInput{ShipmentID: ids[0], Action: "reject", ApproverID: approverID})
	require.NoError(t, err)

	pending, err := f.svc.List(ctx, ListInput{Status: "pending", Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, pending.Items, 2)
	assert.Equal(t, ids[2], pending.Items[0].ID)
	assert.Equal(t, 1, pending.Items[0].TotalQty)

	_, err = f.svc.List(ctx, ListInput{Status: "shipped"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestTransitionStatusIsConditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, 2, CreateInput{Lines: []LineInput{{ItemID: f.cable.ID, Quantity: 1}}})
	require.NoError(t, err)

	repo := NewRepository(f.db)
	move := transition{id: created.ID, from: enums.ShipmentStatusPending, to: enums.ShipmentStatusApproved, approverID: approverID, at: f.fixedAt}
	ok, err := repo.TransitionStatus(ctx, move)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(ctx, move)
	require.NoError(t, err)
	assert.False(t, ok, "a second writer must not win")
}

func metricsDecisions(t *testing.T, reg *prometheus.Registry) *prometheus.CounterVec {
	t.Helper()
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goods_out_decisions_total",
		Help: "Goods-out approval decisions by action and outcome.",
	}, []string{"action", "outcome"})
	err := reg.Register(vec)
	var already prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	return already.ExistingCollector.(*prometheus.CounterVec)
}
