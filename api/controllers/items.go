package controllers

import (
	"net/http"

	"github.com/angelmondragon/gudang-backend/api/responses"
	"github.com/angelmondragon/gudang-backend/api/validators"
	"github.com/angelmondragon/gudang-backend/internal/items"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/logger"
)

type itemCreateRequest struct {
	Code       string  `json:"code" validate:"notblank,max=50"`
	Name       string  `json:"name" validate:"notblank,max=200"`
	Unit       string  `json:"unit" validate:"notblank,max=20"`
	MinStock   int     `json:"minStock" validate:"min=0"`
	Location   string  `json:"location" validate:"max=100"`
	CategoryID *uint64 `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
}

type itemUpdateRequest struct {
	Code       *string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Unit       *string `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	MinStock   *int    `json:"minStock,omitempty" validate:"omitempty,min=0"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=100"`
	CategoryID *uint64 `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
}

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		page, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStock, err := validators.ParseQueryBool(r, "lowStock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), items.ListItemsInput{
			Search:     searchTerm(r),
			CategoryID: categoryID,
			LowStock:   lowStock,
			Pagination: page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var body itemCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), items.CreateItemInput{
			Code:       body.Code,
			Name:       body.Name,
			Unit:       body.Unit,
			MinStock:   body.MinStock,
			Location:   body.Location,
			CategoryID: body.CategoryID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "item created", item)
	}
}

func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body itemUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), id, items.UpdateItemInput{
			Code:       body.Code,
			Name:       body.Name,
			Unit:       body.Unit,
			MinStock:   body.MinStock,
			Location:   body.Location,
			CategoryID: body.CategoryID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteMessage(w, "item updated", item)
	}
}

// ItemDelete soft deletes an item. Items still holding stock are refused.
func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
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

		responses.WriteMessage(w, "item deleted", nil)
	}
}

// ItemSearch backs the item autocomplete.
func ItemSearch(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", items.DefaultLookupLimit, 1, items.MaxLookupLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		options, err := svc.Search(r.Context(), searchTerm(r), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, options)
	}
}

// ItemSerialSearch lists serial units that no goods-out line has claimed.
func ItemSerialSearch(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		itemID, err := validators.ParseQueryID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", items.DefaultLookupLimit, 1, items.MaxLookupLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		units, err := svc.SerialSearch(r.Context(), items.SerialSearchInput{
			ItemID: itemID,
			Search: searchTerm(r),
			Limit:  limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, units)
	}
}
