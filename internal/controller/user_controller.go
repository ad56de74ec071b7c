package controller

import (
	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
	UpdateModelCredentials(ctx *fiber.Ctx) error
}

type userController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) IUserController {
	return &userController{
		userService: userService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("me", c.Me)
	h.Put("model-credentials", c.UpdateModelCredentials)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	user, err := c.userService.Show(ctx.Context(), userId)
	if err != nil {
		return err
	}
	if user == nil {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}

	res := dto.GetUserResponse{
		Id:        user.Id,
		Name:      user.Name,
		Email:     user.Email,
		UserType:  user.UserType,
		ModelName: user.ModelName,
		ApiUrl:    user.ApiUrl,
		CreatedAt: user.CreatedAt,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show user", res))
}

func (c *userController) UpdateModelCredentials(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateModelCredentialsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.userService.UpdateModelCredentials(ctx.Context(), userId, req.ApiKey, req.ApiUrl, req.ModelName); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update model credentials", struct{}{}))
}
