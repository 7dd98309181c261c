package controllers

import (
	"net/http"

	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	"github.com/orderdesk/orderdesk-backend/internal/payments"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

type reportPaymentRequest struct {
	CustomerID int64  `json:"customer_id" validate:"required"`
	Method     string `json:"method" validate:"required"`
}

// ReportPayment records the customer's "I paid" claim.
func ReportPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reportPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Report(r.Context(), orderID, req.CustomerID, req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ConfirmPayment settles the order after an operator verified the transfer.
func ConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorID, ok := middleware.OperatorIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator identity missing"))
			return
		}

		order, err := svc.Confirm(r.Context(), orderID, operatorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type rejectPaymentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectPayment sends an unverifiable claim back to waiting_payment.
func RejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		operatorID, ok := middleware.OperatorIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator identity missing"))
			return
		}

		var req rejectPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RejectPayment(r.Context(), orderID, operatorID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "payment_rejected"})
	}
}
