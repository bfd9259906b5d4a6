package controller

import (
	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/serverutils"
	"survey-payout-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISurveyController interface {
	RegisterRoutes(r fiber.Router)
	Available(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	MyResponses(ctx *fiber.Ctx) error
}

type surveyController struct {
	surveyService   service.ISurveyService
	responseService service.IResponseService
	jwtSecret       string
}

func NewSurveyController(surveyService service.ISurveyService, responseService service.IResponseService, jwtSecret string) ISurveyController {
	return &surveyController{
		surveyService:   surveyService,
		responseService: responseService,
		jwtSecret:       jwtSecret,
	}
}

func (c *surveyController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.NewJwtMiddleware(c.jwtSecret)

	h := r.Group("/surveys", auth)
	h.Get("/available", c.Available)
	h.Post("/:id/start", c.Start)
	h.Post("/:id/complete", c.Complete)

	r.Get("/me/responses", auth, c.MyResponses)
}

func (c *surveyController) Available(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.surveyService.ListAvailable(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list available surveys", res))
}

func (c *surveyController) Start(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	surveyId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return entity.ErrSurveyNotFound
	}

	var req dto.StartResponseRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.responseService.StartResponse(ctx.UserContext(), userId, surveyId, entity.Provenance{
		Country:   req.Country,
		IpAddress: ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
		Referrer:  firstNonEmpty(req.Referrer, ctx.Get(fiber.HeaderReferer)),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success start survey", res))
}

func (c *surveyController) Complete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	surveyId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return entity.ErrSurveyNotFound
	}

	var req dto.CompleteResponseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	outcome, ok := service.NormalizeOutcome(req.Outcome)
	if !ok {
		return entity.ErrInvalidOutcome
	}

	res, err := c.responseService.CompleteResponse(ctx.UserContext(), userId, surveyId, outcome, req.Payload)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success complete survey", res))
}

func (c *surveyController) MyResponses(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var query dto.ResponseListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.responseService.ListMine(ctx.UserContext(), userId, query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list responses", res))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
