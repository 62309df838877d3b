package goodsin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gudang-backend/internal/ledger"
	pkgdb "github.com/angelmondragon/gudang-backend/pkg/db"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/docno"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service books received goods into stock.
type Service interface {
	Create(ctx context.Context, actorID uint64, input CreateInput) (*ShipmentDTO, error)
	Get(ctx context.Context, id uint64) (*ShipmentDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Delete(ctx context.Context, actorID, id uint64) error
}

// CreateInput is a validated goods-in document.
type CreateInput struct {
	ArrivalCode  string
	ArrivalDate  time.Time
	SupplierName string
	FormNumber   string
	Notes        string
	Lines        []LineInput
}

// LineInput receives Quantity units of an item. When Serials is non-empty its
// length must equal Quantity.
type LineInput struct {
	ItemID   uint64
	Quantity int
	Serials  []SerialInput
}

type SerialInput struct {
	SerialNumber string
	Location     string
	Notes        string
}

type ListInput struct {
	Search     string
	Status     string
	Pagination pagination.Params
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	ledger ledger.Service
	tx     txRunner
	now    func() time.Time
}

func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods-in repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, ledger: ledgerSvc, tx: tx, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, actorID uint64, input CreateInput) (*ShipmentDTO, error) {
	shipment, serials, err := s.buildShipment(actorID, input)
	if err != nil {
		return nil, err
	}

	var created *models.IncomingShipment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		taken, err := repo.ArrivalCodeTaken(ctx, shipment.ArrivalCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check arrival code")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("arrival code %s already exists", shipment.ArrivalCode))
		}

		itemIDs := distinctItemIDs(shipment.Lines)
		active, err := repo.CountActiveItems(ctx, itemIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check items")
		}
		if active != int64(len(itemIDs)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more items do not exist or are inactive")
		}

		if len(serials) > 0 {
			existing, err := repo.ExistingSerials(ctx, serials)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial numbers")
			}
			if len(existing) > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "serial numbers already registered").
					WithDetails(map[string]any{"serialNumbers": existing})
			}
		}

		if err := repo.Create(ctx, shipment); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "arrival code or serial number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create incoming shipment")
		}

		for _, line := range shipment.Lines {
			if _, err := s.ledger.Apply(ctx, tx, ledger.Movement{
				ItemID:        line.ItemID,
				Type:          enums.StockTransactionIn,
				Quantity:      line.Quantity,
				ReferenceType: models.ReferenceIncomingShipment,
				ReferenceID:   shipment.ID,
				ActorUserID:   actorID,
			}); err != nil {
				return err
			}
		}

		loaded, err := s.findActive(ctx, repo, shipment.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created, true), nil
}

func (s *service) Get(ctx context.Context, id uint64) (*ShipmentDTO, error) {
	shipment, err := s.findActive(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(shipment, true), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	q := listQuery{
		search: strings.TrimSpace(input.Search),
		limit:  pagination.LimitWithBuffer(input.Pagination.Limit),
	}
	if input.Status != "" {
		status, err := enums.ParseIncomingShipmentStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		q.status = status.String()
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q.cursorID = cursor.ID
	}

	rows, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list incoming shipments")
	}
	page, next := pagination.Trim(rows, input.Pagination.Limit, func(r models.IncomingShipment) uint64 { return r.ID })
	out := make([]ShipmentDTO, 0, len(page))
	for i := range page {
		out = append(out, *FromModel(&page[i], false))
	}
	return &ListResult{Items: out, Cursor: next}, nil
}

// Delete cancels a goods-in document and takes its quantities back out of
// stock. It is refused once any of its serial units backs an outgoing line.
func (s *service) Delete(ctx context.Context, actorID, id uint64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		shipment, err := s.findActive(ctx, repo, id)
		if err != nil {
			return err
		}

		var unitIDs []uint64
		for _, line := range shipment.Lines {
			for _, u := range line.Units {
				unitIDs = append(unitIDs, u.ID)
			}
		}
		if len(unitIDs) > 0 {
			allocated, err := repo.CountAllocatedUnits(ctx, unitIDs)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial allocation")
			}
			if allocated > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("%d serial unit(s) from this shipment are already used by goods-out", allocated))
			}
		}

		if shipment.Status == enums.IncomingShipmentStatusReceived {
			for _, line := range shipment.Lines {
				if _, err := s.ledger.Apply(ctx, tx, ledger.Movement{
					ItemID:        line.ItemID,
					Type:          enums.StockTransactionReversal,
					Quantity:      line.Quantity,
					ReferenceType: models.ReferenceIncomingShipment,
					ReferenceID:   shipment.ID,
					ActorUserID:   actorID,
				}); err != nil {
					return err
				}
			}
		}

		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete incoming shipment")
		}
		return nil
	})
}

func (s *service) buildShipment(actorID uint64, input CreateInput) (*models.IncomingShipment, []string, error) {
	supplier := strings.TrimSpace(input.SupplierName)
	if supplier == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "supplierName is required")
	}
	if len(input.Lines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	now := s.now()
	code := strings.TrimSpace(input.ArrivalCode)
	if code == "" {
		code = docno.New(docno.PrefixGoodsIn, now)
	}
	arrival := input.ArrivalDate
	if arrival.IsZero() {
		arrival = now
	}

	seen := make(map[string]struct{})
	var serials []string
	lines := make([]models.IncomingShipmentLine, 0, len(input.Lines))
	for idx, in := range input.Lines {
		if in.ItemID == 0 {
			return nil, nil, lineError(idx, "itemId is required")
		}
		if in.Quantity <= 0 {
			return nil, nil, lineError(idx, "quantity must be greater than zero")
		}
		if len(in.Serials) > 0 && len(in.Serials) != in.Quantity {
			return nil, nil, lineError(idx, fmt.Sprintf("quantity %d does not match %d serial numbers", in.Quantity, len(in.Serials)))
		}

		units := make([]models.SerialUnit, 0, len(in.Serials))
		for _, sn := range in.Serials {
			number := strings.TrimSpace(sn.SerialNumber)
			if number == "" {
				return nil, nil, lineError(idx, "serial number cannot be empty")
			}
			if _, dup := seen[number]; dup {
				return nil, nil, lineError(idx, fmt.Sprintf("serial number %s is duplicated", number))
			}
			seen[number] = struct{}{}
			serials = append(serials, number)
			units = append(units, models.SerialUnit{
				ItemID:       in.ItemID,
				SerialNumber: number,
				Location:     strings.TrimSpace(sn.Location),
				Notes:        strings.TrimSpace(sn.Notes),
			})
		}
		lines = append(lines, models.IncomingShipmentLine{ItemID: in.ItemID, Quantity: in.Quantity, Units: units})
	}

	return &models.IncomingShipment{
		ArrivalCode:  code,
		ArrivalDate:  arrival,
		SupplierName: supplier,
		FormNumber:   strings.TrimSpace(input.FormNumber),
		Status:       enums.IncomingShipmentStatusReceived,
		Notes:        strings.TrimSpace(input.Notes),
		CreatedBy:    actorID,
		IsActive:     true,
		Lines:        lines,
	}, serials, nil
}

func (s *service) findActive(ctx context.Context, repo Repository, id uint64) (*models.IncomingShipment, error) {
	shipment, err := repo.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "incoming shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incoming shipment")
	}
	return shipment, nil
}

func lineError(idx int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("lines[%d]: %s", idx, msg)).
		WithDetails(map[string]any{"line": idx})
}

func distinctItemIDs(lines []models.IncomingShipmentLine) []uint64 {
	seen := make(map[uint64]struct{}, len(lines))
	ids := make([]uint64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		ids = append(ids, l.ItemID)
	}
	return ids
}
