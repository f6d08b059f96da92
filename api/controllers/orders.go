package controllers

import (
	"net/http"

	"github.com/angelmondragon/bookstore/api/responses"
	"github.com/angelmondragon/bookstore/api/validators"
	"github.com/angelmondragon/bookstore/internal/orders"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
)

// OrderCheckout serves POST /api/orders/checkout. The address is normalized before
// validation so a blank country defaults instead of failing.
func OrderCheckout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var input orders.CheckoutInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShippingAddress = input.ShippingAddress.Normalize()
		if err := validators.ValidateStruct(&input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"order_id":     result.OrderID.String(),
				"order_number": result.OrderNumber,
				"user_id":      input.UserID.String(),
			})
			logg.Info(ctx, "orders.checkout.placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderHistory serves GET /api/orders/history/{userId}, newest first.
func OrderHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := uuidParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
