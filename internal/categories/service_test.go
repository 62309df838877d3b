package categories

import (
	"context"
	"testing"

	pkgdb "github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), pkgdb.NewFromGorm(conn))
	require.NoError(t, err)
	return conn, svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	conn := dbtest.Open(t)
	_, err := NewService(nil, pkgdb.NewFromGorm(conn))
	assert.Error(t, err)
	_, err = NewService(NewRepository(conn), nil)
	assert.Error(t, err)
}

func TestCreateRejectsDuplicateActiveName(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: " Jaringan ", Description: "perangkat jaringan"})
	require.NoError(t, err)
	assert.Equal(t, "Jaringan", created.Name)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, Input{Name: "jaringan"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Create(ctx, Input{Name: "   "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateRenamesCategory(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, Input{Name: "Kabel"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Router"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, first.ID, Input{Name: "Kabel & Konektor", Description: "aksesoris"})
	require.NoError(t, err)
	assert.Equal(t, "Kabel & Konektor", updated.Name)
	assert.Equal(t, "aksesoris", updated.Description)

	// keeping its own name is not a conflict
	_, err = svc.Update(ctx, first.ID, Input{Name: "kabel & konektor"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, first.ID, Input{Name: "ROUTER"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Update(ctx, 999, Input{Name: "Lain"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteBlockedWhileCategoryInUse(t *testing.T) {
	conn, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Server"})
	require.NoError(t, err)
	inUse, err := svc.Create(ctx, Input{Name: "Laptop"})
	require.NoError(t, err)
	require.EqualValues(t, 2, inUse.ID)

	require.NoError(t, conn.Create(&models.Item{
		Code: "LPT-01", Name: "ThinkPad", Unit: "unit", CategoryID: &inUse.ID, IsActive: true,
	}).Error)

	err = svc.Delete(ctx, inUse.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Contains(t, err.Error(), "still in use")

	got, err := svc.Get(ctx, inUse.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestDeleteIgnoresInactiveItems(t *testing.T) {
	conn, svc := newTestService(t)
	ctx := context.Background()

	category, err := svc.Create(ctx, Input{Name: "Printer"})
	require.NoError(t, err)

	item := &models.Item{Code: "PRN-01", Name: "LaserJet", Unit: "unit", CategoryID: &category.ID}
	require.NoError(t, conn.Create(item).Error)
	require.NoError(t, conn.Model(item).Update("is_active", false).Error)

	require.NoError(t, svc.Delete(ctx, category.ID))

	_, err = svc.Get(ctx, category.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	rows, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// a deleted name can be reused
	_, err = svc.Create(ctx, Input{Name: "Printer"})
	assert.NoError(t, err)
}

func TestListFiltersBySearch(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Monitor", "Mouse", "Keyboard"} {
		_, err := svc.Create(ctx, Input{Name: name})
		require.NoError(t, err)
	}

	rows, err := svc.List(ctx, "mo")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Monitor", rows[0].Name)
	assert.Equal(t, "Mouse", rows[1].Name)

	dtos := FromModels(rows)
	assert.Equal(t, "Monitor", dtos[0].Nama)
}
