package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/gudang-backend/api/responses"
	"github.com/angelmondragon/gudang-backend/api/validators"
	"github.com/angelmondragon/gudang-backend/internal/goodsout"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
)

type goodsOutLineRequest struct {
	ItemID       uint64  `json:"itemId" validate:"required,gt=0"`
	Quantity     int     `json:"quantity" validate:"min=0"`
	SerialUnitID *uint64 `json:"serialUnitId,omitempty" validate:"omitempty,gt=0"`
}

type goodsOutCreateRequest struct {
	TransactionNo   string                `json:"transactionNo" validate:"max=50"`
	TransactionDate *time.Time            `json:"transactionDate,omitempty"`
	Recipient       string                `json:"recipient" validate:"notblank,max=200"`
	Purpose         string                `json:"purpose" validate:"max=500"`
	Lines           []goodsOutLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req goodsOutCreateRequest) toInput() goodsout.CreateInput {
	input := goodsout.CreateInput{
		TransactionNo: req.TransactionNo,
		Recipient:     req.Recipient,
		Purpose:       req.Purpose,
		Lines:         make([]goodsout.LineInput, 0, len(req.Lines)),
	}
	if req.TransactionDate != nil {
		input.TransactionDate = *req.TransactionDate
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, goodsout.LineInput{
			ItemID:       line.ItemID,
			Quantity:     line.Quantity,
			SerialUnitID: line.SerialUnitID,
		})
	}
	return input
}

// Action is deliberately unconstrained here; the service owns the allowed set
// so an unknown action is rejected without touching the store.
type goodsOutDecisionRequest struct {
	Action string `json:"action" validate:"required"`
}

// GoodsOutCreate files a pending goods-out request. Stock is untouched until approval.
func GoodsOutCreate(svc goodsout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-out service unavailable"))
			return
		}

		actorID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body goodsOutCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Create(r.Context(), actorID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "goods-out request created", shipment)
	}
}

func GoodsOutList(svc goodsout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-out service unavailable"))
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), goodsout.ListInput{
			Status:     r.URL.Query().Get("status"),
			Search:     searchTerm(r),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func GoodsOutGet(svc goodsout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-out service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipment)
	}
}

func GoodsOutDelete(svc goodsout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-out service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "goods-out deleted", nil)
	}
}

// GoodsOutDecide approves or rejects a pending goods-out. Approval decrements
// stock for every line in the same transaction as the status change.
func GoodsOutDecide(svc goodsout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-out service unavailable"))
			return
		}

		approverID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body goodsOutDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Decide(r.Context(), goodsout.DecisionInput{
			ShipmentID: id,
			Action:     body.Action,
			ApproverID: approverID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithShipmentID(r.Context(), id)
		logg.Info(logg.WithField(ctx, "status", string(result.Status)), "goods-out decided")
		responses.WriteMessage(w, decisionMessage(result), result)
	}
}

func decisionMessage(result *goodsout.DecisionResult) string {
	if result.Status == enums.ShipmentStatusApproved {
		return fmt.Sprintf("goods-out %s approved", result.TransactionNo)
	}
	return fmt.Sprintf("goods-out %s rejected", result.TransactionNo)
}
