package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/gudang-backend/api/responses"
	"github.com/angelmondragon/gudang-backend/api/validators"
	"github.com/angelmondragon/gudang-backend/internal/goodsin"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
)

type goodsInSerialRequest struct {
	SerialNumber string `json:"serialNumber" validate:"notblank,max=100"`
	Location     string `json:"location" validate:"max=100"`
	Notes        string `json:"notes" validate:"max=500"`
}

type goodsInLineRequest struct {
	ItemID   uint64                 `json:"itemId" validate:"required,gt=0"`
	Quantity int                    `json:"quantity" validate:"required,gt=0"`
	Serials  []goodsInSerialRequest `json:"serialUnits" validate:"omitempty,dive"`
}

type goodsInCreateRequest struct {
	ArrivalCode  string               `json:"arrivalCode" validate:"max=50"`
	ArrivalDate  *time.Time           `json:"arrivalDate,omitempty"`
	SupplierName string               `json:"supplierName" validate:"notblank,max=200"`
	FormNumber   string               `json:"formNumber" validate:"max=100"`
	Notes        string               `json:"notes" validate:"max=1000"`
	Lines        []goodsInLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req goodsInCreateRequest) toInput() goodsin.CreateInput {
	input := goodsin.CreateInput{
		ArrivalCode:  req.ArrivalCode,
		SupplierName: req.SupplierName,
		FormNumber:   req.FormNumber,
		Notes:        req.Notes,
		Lines:        make([]goodsin.LineInput, 0, len(req.Lines)),
	}
	if req.ArrivalDate != nil {
		input.ArrivalDate = *req.ArrivalDate
	}
	for _, line := range req.Lines {
		serials := make([]goodsin.SerialInput, 0, len(line.Serials))
		for _, s := range line.Serials {
			serials = append(serials, goodsin.SerialInput{
				SerialNumber: s.SerialNumber,
				Location:     s.Location,
				Notes:        s.Notes,
			})
		}
		input.Lines = append(input.Lines, goodsin.LineInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Serials:  serials,
		})
	}
	return input
}

// GoodsInCreate books a received shipment and raises stock for every line.
func GoodsInCreate(svc goodsin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-in service unavailable"))
			return
		}

		actorID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body goodsInCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Create(r.Context(), actorID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "goods-in recorded", shipment)
	}
}

func GoodsInList(svc goodsin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-in service unavailable"))
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), goodsin.ListInput{
			Search:     searchTerm(r),
			Status:     r.URL.Query().Get("status"),
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func GoodsInGet(svc goodsin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-in service unavailable"))
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

// GoodsInDelete soft deletes a shipment and reverses its stock, provided none
// of its serial units has been issued.
func GoodsInDelete(svc goodsin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "goods-in service unavailable"))
			return
		}

		actorID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "goods-in deleted", nil)
	}
}
