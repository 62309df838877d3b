package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/gudang-backend/api/responses"
	"github.com/angelmondragon/gudang-backend/api/validators"
	"github.com/angelmondragon/gudang-backend/internal/ledger"
	"github.com/angelmondragon/gudang-backend/pkg/db/models"
	"github.com/angelmondragon/gudang-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
	"github.com/angelmondragon/gudang-backend/pkg/types"
)

type stockTransactionResponse struct {
	ID            uint64                     `json:"id"`
	ItemID        uint64                     `json:"itemId"`
	Type          enums.StockTransactionType `json:"type"`
	Quantity      int                        `json:"quantity"`
	StockAfter    int                        `json:"stockAfter"`
	ReferenceType string                     `json:"referenceType"`
	ReferenceID   uint64                     `json:"referenceId"`
	ActorUserID   uint64                     `json:"actorUserId"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

func newStockTransactionResponse(t models.StockTransaction) stockTransactionResponse {
	return stockTransactionResponse{
		ID:            t.ID,
		ItemID:        t.ItemID,
		Type:          t.Type,
		Quantity:      t.Quantity,
		StockAfter:    t.StockAfter,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		ActorUserID:   t.ActorUserID,
		CreatedAt:     t.CreatedAt,
	}
}

// StockTransactionList pages through the stock ledger, newest first.
func StockTransactionList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseQueryID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), ledger.ListParams{
			ItemID: itemID,
			Type:   r.URL.Query().Get("type"),
			Params: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]stockTransactionResponse, 0, len(result.Items))
		for _, t := range result.Items {
			rows = append(rows, newStockTransactionResponse(t))
		}
		responses.WriteSuccess(w, types.ListPayload{Items: rows, Cursor: result.Cursor})
	}
}
