package controller

import (
	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/serverutils"
	"survey-payout-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWithdrawalController interface {
	RegisterRoutes(r fiber.Router)
	Balance(ctx *fiber.Ctx) error
	PaymentMethods(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	MyWithdrawals(ctx *fiber.Ctx) error
}

type withdrawalController struct {
	withdrawalService service.IWithdrawalService
	jwtSecret         string
}

func NewWithdrawalController(withdrawalService service.IWithdrawalService, jwtSecret string) IWithdrawalController {
	return &withdrawalController{
		withdrawalService: withdrawalService,
		jwtSecret:         jwtSecret,
	}
}

func (c *withdrawalController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.NewJwtMiddleware(c.jwtSecret)

	r.Get("/payment-methods", auth, c.PaymentMethods)
	r.Get("/me/balance", auth, c.Balance)
	r.Get("/me/withdrawals", auth, c.MyWithdrawals)

	h := r.Group("/withdrawals", auth)
	h.Post("", c.Submit)
	h.Post("/:id/cancel", c.Cancel)
}

func (c *withdrawalController) Balance(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	res, err := c.withdrawalService.GetBalance(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get balance", res))
}

func (c *withdrawalController) PaymentMethods(ctx *fiber.Ctx) error {
	res, err := c.withdrawalService.ListPaymentMethods(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list payment methods", res))
}

func (c *withdrawalController) Submit(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var req dto.SubmitWithdrawalRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.withdrawalService.SubmitWithdrawal(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Withdrawal request submitted", res))
}

func (c *withdrawalController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return entity.ErrWithdrawalNotFound
	}

	res, err := c.withdrawalService.CancelWithdrawal(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Withdrawal request cancelled", res))
}

func (c *withdrawalController) MyWithdrawals(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	var query dto.WithdrawalListQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.withdrawalService.ListMine(ctx.UserContext(), userId, query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list withdrawals", res))
}
