package serverutils

import (
	"errors"
	"fmt"

	"survey-payout-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindInsufficient:
		return fiber.StatusUnprocessableEntity
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders err as the standard error envelope.
func WriteError(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}
	appErr := apperror.As(err)
	status := StatusFor(appErr.Kind)
	return ctx.Status(status).JSON(AppErrorResponse(status, appErr))
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	return WriteError(ctx, err)
}

// ErrorHandlerMiddleware turns handler errors and panics into the standard
// envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = WriteError(ctx, fmt.Errorf("panic: %v", r))
			}
		}()

		if err := ctx.Next(); err != nil {
			return WriteError(ctx, err)
		}
		return nil
	}
}
