package goodsout

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
	"github.com/angelmondragon/gudang-backend/pkg/metrics"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service manages goods-out requests and their approval.
type Service interface {
	Create(ctx context.Context, actorID uint64, input CreateInput) (*ShipmentDTO, error)
	Get(ctx context.Context, id uint64) (*ShipmentDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Delete(ctx context.Context, id uint64) error
	Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error)
}

type CreateInput struct {
	TransactionNo   string
	TransactionDate time.Time
	Recipient       string
	Purpose         string
	Lines           []LineInput
}

// LineInput issues Quantity of an item. A line naming a serial unit always
// issues exactly one unit.
type LineInput struct {
	ItemID       uint64
	Quantity     int
	SerialUnitID *uint64
}

type ListInput struct {
	Status     string
	Search     string
	Pagination pagination.Params
}

// DecisionInput carries an approve or reject request. Action is raw client input.
type DecisionInput struct {
	ShipmentID uint64
	Action     string
	ApproverID uint64
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	ledger  ledger.Service
	tx      txRunner
	metrics *metrics.ApprovalMetrics
	now     func() time.Time
}

// NewService wires the goods-out service. approvalMetrics may be nil.
func NewService(repo Repository, ledgerSvc ledger.Service, tx txRunner, approvalMetrics *metrics.ApprovalMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods-out repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		ledger:  ledgerSvc,
		tx:      tx,
		metrics: approvalMetrics,
		now:     time.Now,
	}, nil
}

// Decide approves or rejects a pending shipment. The status change and, on
// approval, every line's stock decrement commit in one transaction.
func (s *service) Decide(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	action, err := enums.ParseApprovalAction(input.Action)
	if err != nil {
		s.metrics.Decision("invalid", metrics.OutcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject").
			WithDetails(map[string]any{"action": input.Action})
	}
	if input.ShipmentID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if input.ApproverID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target := action.TargetStatus()
	var (
		result  *DecisionResult
		shipped int
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		shipment, err := repo.FindActiveForDecision(ctx, input.ShipmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "goods-out shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load goods-out shipment")
		}
		if shipment.Status != enums.ShipmentStatusPending {
			return stateConflict(shipment.Status)
		}

		at := s.now().UTC()
		ok, err := repo.TransitionStatus(ctx, transition{
			id:         shipment.ID,
			from:       enums.ShipmentStatusPending,
			to:         target,
			approverID: input.ApproverID,
			at:         at,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update goods-out status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment was decided by another request")
		}

		if action == enums.ApprovalActionApprove {
			for _, line := range shipment.Lines {
				if _, err := s.ledger.Apply(ctx, tx, ledger.Movement{
					ItemID:        line.ItemID,
					Type:          enums.StockTransactionOut,
					Quantity:      line.Quantity,
					ReferenceType: models.ReferenceOutgoingShipment,
					ReferenceID:   shipment.ID,
					ActorUserID:   input.ApproverID,
				}); err != nil {
					return err
				}
				shipped += line.Quantity
			}
		}

		result = &DecisionResult{
			ID:            shipment.ID,
			TransactionNo: shipment.TransactionNo,
			Status:        target,
			ApproverID:    input.ApproverID,
			UpdatedAt:     at,
		}
		return nil
	})
	if err != nil {
		s.metrics.Decision(string(action), outcomeFor(err))
		return nil, err
	}

	s.metrics.Decision(string(action), metrics.OutcomeApplied)
	s.metrics.StockDecremented(shipped)
	return result, nil
}

func (s *service) Create(ctx context.Context, actorID uint64, input CreateInput) (*ShipmentDTO, error) {
	shipment, unitIDs, err := s.buildShipment(actorID, input)
	if err != nil {
		return nil, err
	}

	var created *models.OutgoingShipment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		taken, err := repo.TransactionNoTaken(ctx, shipment.TransactionNo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check transaction number")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("transaction number %s already exists", shipment.TransactionNo))
		}

		itemIDs := distinctItemIDs(shipment.Lines)
		active, err := repo.CountActiveItems(ctx, itemIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check items")
		}
		if active != int64(len(itemIDs)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more items do not exist or are inactive")
		}

		if len(unitIDs) > 0 {
			if err := ensureUnitsAvailable(ctx, repo, shipment.Lines, unitIDs); err != nil {
				return err
			}
		}

		if err := repo.Create(ctx, shipment); err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "serial unit already allocated")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create goods-out shipment")
		}

		loaded, err := findActive(ctx, repo, shipment.ID)
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
	shipment, err := findActive(ctx, s.repo, id)
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
		status, err := enums.ParseShipmentStatus(strings.ToLower(strings.TrimSpace(input.Status)))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		q.status = status
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list goods-out shipments")
	}
	page, next := pagination.Trim(rows, input.Pagination.Limit, func(r models.OutgoingShipment) uint64 { return r.ID })
	out := make([]ShipmentDTO, 0, len(page))
	for i := range page {
		out = append(out, *FromModel(&page[i], false))
	}
	return &ListResult{Items: out, Cursor: next}, nil
}

// Delete withdraws a pending request and frees its serial units.
func (s *service) Delete(ctx context.Context, id uint64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		shipment, err := repo.FindActiveForDecision(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "goods-out shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load goods-out shipment")
		}
		if shipment.Status != enums.ShipmentStatusPending {
			return stateConflict(shipment.Status)
		}
		if err := repo.DeleteLines(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete goods-out lines")
		}
		if err := repo.Deactivate(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete goods-out shipment")
		}
		return nil
	})
}

func (s *service) buildShipment(actorID uint64, input CreateInput) (*models.OutgoingShipment, []uint64, error) {
	if len(input.Lines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	now := s.now()
	no := strings.TrimSpace(input.TransactionNo)
	if no == "" {
		no = docno.New(docno.PrefixGoodsOut, now)
	}
	date := input.TransactionDate
	if date.IsZero() {
		date = now
	}

	seen := make(map[uint64]struct{})
	var unitIDs []uint64
	lines := make([]models.OutgoingShipmentLine, 0, len(input.Lines))
	for idx, in := range input.Lines {
		if in.ItemID == 0 {
			return nil, nil, lineError(idx, "itemId is required")
		}
		qty := in.Quantity
		if in.SerialUnitID != nil {
			if qty == 0 {
				qty = 1
			}
			if qty != 1 {
				return nil, nil, lineError(idx, "a line with a serial unit must have quantity 1")
			}
			if _, dup := seen[*in.SerialUnitID]; dup {
				return nil, nil, lineError(idx, fmt.Sprintf("serial unit %d is listed twice", *in.SerialUnitID))
			}
			seen[*in.SerialUnitID] = struct{}{}
			unitIDs = append(unitIDs, *in.SerialUnitID)
		}
		if qty <= 0 {
			return nil, nil, lineError(idx, "quantity must be greater than zero")
		}
		lines = append(lines, models.OutgoingShipmentLine{
			ItemID:       in.ItemID,
			SerialUnitID: in.SerialUnitID,
			Quantity:     qty,
		})
	}

	return &models.OutgoingShipment{
		TransactionNo:   no,
		TransactionDate: date,
		Recipient:       strings.TrimSpace(input.Recipient),
		Purpose:         strings.TrimSpace(input.Purpose),
		Status:          enums.ShipmentStatusPending,
		RequestedBy:     actorID,
		IsActive:        true,
		Lines:           lines,
	}, unitIDs, nil
}

// ensureUnitsAvailable rechecks inside the transaction what the serial lookup
// showed the user. The unique index on serial_unit_id backs it up.
func ensureUnitsAvailable(ctx context.Context, repo Repository, lines []models.OutgoingShipmentLine, unitIDs []uint64) error {
	units, err := repo.FindReceivedUnits(ctx, unitIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load serial units")
	}
	byID := make(map[uint64]models.SerialUnit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	for idx, line := range lines {
		if line.SerialUnitID == nil {
			continue
		}
		unit, ok := byID[*line.SerialUnitID]
		if !ok {
			return lineError(idx, fmt.Sprintf("serial unit %d not found", *line.SerialUnitID))
		}
		if unit.ItemID != line.ItemID {
			return lineError(idx, fmt.Sprintf("serial unit %s does not belong to item %d", unit.SerialNumber, line.ItemID))
		}
	}

	allocated, err := repo.AllocatedUnitIDs(ctx, unitIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial allocation")
	}
	if len(allocated) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "serial unit already allocated to another goods-out").
			WithDetails(map[string]any{"serialUnitIds": allocated})
	}
	return nil
}

func findActive(ctx context.Context, repo Repository, id uint64) (*models.OutgoingShipment, error) {
	shipment, err := repo.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goods-out shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load goods-out shipment")
	}
	return shipment, nil
}

func stateConflict(current enums.ShipmentStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("shipment is already %s", current)).
		WithDetails(map[string]any{"status": current})
}

func outcomeFor(err error) string {
	if typed := pkgerrors.As(err); typed != nil && pkgerrors.MetadataFor(typed.Code()).HTTPStatus < 500 {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeFailed
}

func lineError(idx int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("lines[%d]: %s", idx, msg)).
		WithDetails(map[string]any{"line": idx})
}

func distinctItemIDs(lines []models.OutgoingShipmentLine) []uint64 {
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
