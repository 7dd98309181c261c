package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/internal/promo"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// CheckPromo runs eligibility checks without consuming a use.
func CheckPromo(svc promo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("customer_id"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer_id query parameter is required"))
			return
		}
		customerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || customerID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer id"))
			return
		}

		result, err := svc.Check(r.Context(), code, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
