package controller

import (
	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/serverutils"
	"survey-payout-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)

	// Responses
	ListResponses(ctx *fiber.Ctx) error
	ApproveResponse(ctx *fiber.Ctx) error
	RejectResponse(ctx *fiber.Ctx) error
	ResetResponse(ctx *fiber.Ctx) error

	// Withdrawals
	ListWithdrawals(ctx *fiber.Ctx) error
	ApproveWithdrawal(ctx *fiber.Ctx) error
	ProcessWithdrawal(ctx *fiber.Ctx) error
	RejectWithdrawal(ctx *fiber.Ctx) error
	CompleteWithdrawal(ctx *fiber.Ctx) error

	// Surveys
	ResumeSurvey(ctx *fiber.Ctx) error
	CallbackURLs(ctx *fiber.Ctx) error

	// Maintenance
	RunReaper(ctx *fiber.Ctx) error
}

type adminController struct {
	responseService   service.IResponseService
	withdrawalService service.IWithdrawalService
	surveyService     service.ISurveyService
	callbackService   service.ICallbackService
	reaperService     service.IReaperService
	jwtSecret         string
}

func NewAdminController(
	responseService service.IResponseService,
	withdrawalService service.IWithdrawalService,
	surveyService service.ISurveyService,
	callbackService service.ICallbackService,
	reaperService service.IReaperService,
	jwtSecret string,
) IAdminController {
	return &adminController{
		responseService:   responseService,
		withdrawalService: withdrawalService,
		surveyService:     surveyService,
		callbackService:   callbackService,
		reaperService:     reaperService,
		jwtSecret:         jwtSecret,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.NewAdminMiddleware(c.jwtSecret))

	h.Get("/responses", c.ListResponses)
	h.Post("/responses/:id/approve", c.ApproveResponse)
	h.Post("/responses/:id/reject", c.RejectResponse)
	h.Post("/responses/:id/reset", c.ResetResponse)

	h.Get("/withdrawals", c.ListWithdrawals)
	h.Post("/withdrawals/:id/approve", c.ApproveWithdrawal)
	h.Post("/withdrawals/:id/processing", c.ProcessWithdrawal)
	h.Post("/withdrawals/:id/reject", c.RejectWithdrawal)
	h.Post("/withdrawals/:id/complete", c.CompleteWithdrawal)

	h.Post("/surveys/:id/resume", c.ResumeSurvey)
	h.Get("/surveys/:id/callback-urls", c.CallbackURLs)

	h.Post("/reaper/run", c.RunReaper)
}

// adminAndTarget reads the acting admin and the :id path parameter.
func adminAndTarget(ctx *fiber.Ctx, notFound error) (uuid.UUID, uuid.UUID, error) {
	adminId, err := serverutils.UserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, notFound
	}
	return adminId, id, nil
}

// parseOptionalBody accepts an empty body for endpoints whose fields are all
// optional.
func parseOptionalBody(ctx *fiber.Ctx, out interface{}) error {
	if len(ctx.Body()) == 0 {
		return serverutils.ValidateRequest(out)
	}
	if err := ctx.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(out)
}

func (c *adminController) ListResponses(ctx *fiber.Ctx) error {
	var query dto.ResponseListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.responseService.ListForAdmin(ctx.UserContext(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list responses", res))
}

func (c *adminController) ApproveResponse(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrResponseNotFound)
	if err != nil {
		return err
	}
	var req dto.ReviewResponseRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.responseService.ApproveResponse(ctx.UserContext(), id, adminId, req.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Response approved", res))
}

func (c *adminController) RejectResponse(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrResponseNotFound)
	if err != nil {
		return err
	}
	var req dto.ReviewResponseRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.responseService.RejectResponse(ctx.UserContext(), id, adminId, req.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Response rejected", res))
}

func (c *adminController) ResetResponse(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrResponseNotFound)
	if err != nil {
		return err
	}

	res, err := c.responseService.ResetResponse(ctx.UserContext(), id, adminId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Response reset", res))
}

func (c *adminController) ListWithdrawals(ctx *fiber.Ctx) error {
	var query dto.WithdrawalListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.withdrawalService.ListAll(ctx.UserContext(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list withdrawals", res))
}

func (c *adminController) ApproveWithdrawal(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrWithdrawalNotFound)
	if err != nil {
		return err
	}
	var req dto.ApproveWithdrawalRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.withdrawalService.ApproveWithdrawal(ctx.UserContext(), id, adminId, req.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Withdrawal approved", res))
}

func (c *adminController) ProcessWithdrawal(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrWithdrawalNotFound)
	if err != nil {
		return err
	}

	res, err := c.withdrawalService.MarkWithdrawalProcessing(ctx.UserContext(), id, adminId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Withdrawal marked as processing", res))
}

func (c *adminController) RejectWithdrawal(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrWithdrawalNotFound)
	if err != nil {
		return err
	}
	var req dto.RejectWithdrawalRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.withdrawalService.RejectWithdrawal(ctx.UserContext(), id, adminId, req.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Withdrawal rejected", res))
}

func (c *adminController) CompleteWithdrawal(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrWithdrawalNotFound)
	if err != nil {
		return err
	}
	var req dto.CompleteWithdrawalRequest
	if err := parseOptionalBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.withdrawalService.CompleteWithdrawal(ctx.UserContext(), id, adminId, req.TransactionReference, req.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Withdrawal completed", res))
}

func (c *adminController) ResumeSurvey(ctx *fiber.Ctx) error {
	adminId, id, err := adminAndTarget(ctx, entity.ErrSurveyNotFound)
	if err != nil {
		return err
	}

	res, err := c.surveyService.ResumeSurvey(ctx.UserContext(), id, adminId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Survey resumed", res))
}

func (c *adminController) CallbackURLs(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return entity.ErrSurveyNotFound
	}

	res, err := c.callbackService.CallbackURLs(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success build callback urls", res))
}

func (c *adminController) RunReaper(ctx *fiber.Ctx) error {
	res, err := c.reaperService.Run(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reaper run finished", res))
}
