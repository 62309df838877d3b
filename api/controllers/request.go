package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/gudang-backend/api/middleware"
	"github.com/angelmondragon/gudang-backend/api/validators"
	pkgerrors "github.com/angelmondragon/gudang-backend/pkg/errors"
	"github.com/angelmondragon/gudang-backend/pkg/pagination"
)

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func callerID(r *http.Request) (uint64, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}

// searchTerm accepts either ?q= or ?search= and trims it.
func searchTerm(r *http.Request) string {
	q := r.URL.Query()
	if v := validators.SearchTerm(q, "q"); v != "" {
		return v
	}
	return validators.SearchTerm(q, "search")
}
