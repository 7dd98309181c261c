package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	"github.com/orderdesk/orderdesk-backend/internal/ledger"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/pagination"
)

// CustomerBalance returns the derived balance in kopecks.
func CustomerBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"customer_id": customerID,
			"balance":     balance,
		})
	}
}

// CustomerTransactions returns the paged ledger history, newest first.
func CustomerTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parseCustomerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		items, nextCursor, err := svc.History(r.Context(), customerID, pagination.Params{
			Limit:  limit,
			Cursor: cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":       items,
			"next_cursor": nextCursor,
		})
	}
}

func parseCustomerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "customerId"))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || customerID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer id")
	}
	return customerID, nil
}
