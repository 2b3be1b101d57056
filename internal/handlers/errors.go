// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/velora/velora-backend/internal/services"
	"github.com/velora/velora-backend/internal/utils"
)

// respondServiceError maps service sentinel errors onto HTTP responses.
// Anything unmapped is logged and reported as a 500 without leaking internals.
func respondServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPaymentNotFound),
		errors.Is(err, services.ErrPaymentMethodNotFound),
		errors.Is(err, services.ErrDeliveryMethodNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrReviewNotFound):
		utils.NotFoundResponse(c, err.Error())

	case errors.Is(err, services.ErrEmailExists),
		errors.Is(err, services.ErrCouponExists),
		errors.Is(err, services.ErrCategoryExists),
		errors.Is(err, services.ErrDeliveryPricingExists),
		errors.Is(err, services.ErrPaymentMethodExists),
		errors.Is(err, services.ErrAlreadyReviewed):
		utils.ConflictResponse(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, err.Error())

	case errors.Is(err, services.ErrCartEmpty),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrCouponExpired),
		errors.Is(err, services.ErrCouponUsageLimitReached),
		errors.Is(err, services.ErrCouponMinimumNotMet),
		errors.Is(err, services.ErrPaymentMethodInactive),
		errors.Is(err, services.ErrCategoryNotEmpty):
		utils.BadRequestResponse(c, err.Error(), nil)

	case errors.Is(err, services.ErrOrderNotCancellable),
		errors.Is(err, services.ErrInvalidOrderTransition),
		errors.Is(err, services.ErrInvalidPaymentTransition):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), nil)

	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
