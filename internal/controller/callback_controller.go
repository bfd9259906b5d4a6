package controller

import (
	"errors"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/serverutils"
	"survey-payout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ICallbackController receives completion redirects from external survey
// panels. It is mounted outside /api and carries no JWT: the signed token is
// the only credential.
type ICallbackController interface {
	RegisterRoutes(r fiber.Router)
	Handle(ctx *fiber.Ctx) error
}

type callbackController struct {
	callbackService service.ICallbackService
}

func NewCallbackController(callbackService service.ICallbackService) ICallbackController {
	return &callbackController{callbackService: callbackService}
}

func (c *callbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/survey-callback")
	h.Get("", c.Handle)
	h.Post("", c.Handle)
	h.Get("/:outcome", c.Handle)
	h.Post("/:outcome", c.Handle)
}

func (c *callbackController) Handle(ctx *fiber.Ctx) error {
	outcome := ctx.Params("outcome")
	if outcome == "" {
		outcome = param(ctx, "outcome")
	}

	result, err := c.callbackService.HandleCallback(ctx.UserContext(), service.CallbackRequest{
		Outcome:  outcome,
		SurveyID: param(ctx, "sid"),
		UserID:   param(ctx, "uid"),
		Token:    param(ctx, "token"),
		RemoteIP: ctx.IP(),
	})
	if err != nil {
		if errors.Is(err, entity.ErrInvalidToken) {
			if result != nil && result.Diagnostic != nil {
				return ctx.Status(fiber.StatusForbidden).JSON(result.Diagnostic)
			}
			return ctx.Status(fiber.StatusForbidden).SendString("Forbidden")
		}
		return serverutils.WriteError(ctx, err)
	}

	return ctx.Redirect(result.RedirectURL, fiber.StatusFound)
}

// param reads a callback parameter from the query string or, for POSTs, the
// form body.
func param(ctx *fiber.Ctx, key string) string {
	if v := ctx.Query(key); v != "" {
		return v
	}
	return ctx.FormValue(key)
}
