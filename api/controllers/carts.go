package controllers

import (
	"net/http"

	"github.com/angelmondragon/bookstore/api/responses"
	"github.com/angelmondragon/bookstore/api/validators"
	"github.com/angelmondragon/bookstore/internal/carts"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
)

// CartGet serves GET /api/cart/{userId}.
func CartGet(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := uuidParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// CartAdd serves POST /api/cart/add. A missing or non-positive quantity adds one.
func CartAdd(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(svc, logg, func(r *http.Request, input carts.MutationInput) ([]carts.LineDTO, error) {
		return svc.Add(r.Context(), input)
	})
}

// CartUpdate serves POST /api/cart/update. Quantity zero removes the line.
func CartUpdate(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return cartMutation(svc, logg, func(r *http.Request, input carts.MutationInput) ([]carts.LineDTO, error) {
		return svc.Update(r.Context(), input)
	})
}

// CartClear serves DELETE /api/cart/clear/{userId}.
func CartClear(svc carts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := uuidParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.Clear(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

func cartMutation(svc carts.Service, logg *logger.Logger, apply func(*http.Request, carts.MutationInput) ([]carts.LineDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var input carts.MutationInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := apply(r, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}
