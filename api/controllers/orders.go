package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/middleware"
	"github.com/orderdesk/orderdesk-backend/api/responses"
	"github.com/orderdesk/orderdesk-backend/api/validators"
	"github.com/orderdesk/orderdesk-backend/internal/orders"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

type createOrderRequest struct {
	CustomerID      int64   `json:"customer_id" validate:"required"`
	ReferrerID      *int64  `json:"referrer_id,omitempty"`
	WorkCategory    string  `json:"work_category" validate:"required"`
	Subject         *string `json:"subject,omitempty"`
	Topic           *string `json:"topic,omitempty"`
	Description     string  `json:"description" validate:"required"`
	Deadline        string  `json:"deadline" validate:"required"`
	HasAttachments  bool    `json:"has_attachments"`
	DiscountPercent int     `json:"discount_percent" validate:"min=0,max=100"`
	PromoCode       string  `json:"promo_code,omitempty"`
}

// CreateOrder handles the bot's intake submission.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateOrderInput{
			CustomerID:      req.CustomerID,
			ReferrerID:      req.ReferrerID,
			WorkCategory:    req.WorkCategory,
			Subject:         req.Subject,
			Topic:           req.Topic,
			Description:     req.Description,
			Deadline:        req.Deadline,
			HasAttachments:  req.HasAttachments,
			DiscountPercent: req.DiscountPercent,
			PromoCode:       req.PromoCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail returns the stored order.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderQuote returns the priced breakdown the bot renders before payment.
func OrderQuote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.GetQuote(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type setPriceRequest struct {
	Price int64 `json:"price" validate:"required,min=1"`
}

// SetOrderPrice lets an operator price a manually estimated order.
func SetOrderPrice(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req setPriceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetPrice(r.Context(), orderID, operatorID, req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type customerActionRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required"`
}

// DeclineWallet zeroes the balance reservation at the customer's request.
func DeclineWallet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req customerActionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.DeclineWallet(r.Context(), orderID, req.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type cancelOrderRequest struct {
	CustomerID int64 `json:"customer_id,omitempty"`
}

// CancelOrder cancels on behalf of whoever the token identifies. Bot calls
// carry the customer id in the body, operator calls carry it in the token.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var actor orders.Actor
		if operatorID, ok := middleware.OperatorIDFromContext(r.Context()); ok {
			actor.OperatorID = &operatorID
		} else {
			var req cancelOrderRequest
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if req.CustomerID == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required"))
				return
			}
			actor.CustomerID = &req.CustomerID
		}

		if err := svc.Cancel(r.Context(), orderID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectOrder refuses an order the service will not take on.
func RejectOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req rejectOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reject(r.Context(), orderID, operatorID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "rejected"})
	}
}

type advanceOrderRequest struct {
	To string `json:"to" validate:"required"`
}

// AdvanceOrder moves a paid order through fulfillment.
func AdvanceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req advanceOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(req.To)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		order, err := svc.Advance(r.Context(), orderID, operatorID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func parseOrderID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	return orderID, nil
}
