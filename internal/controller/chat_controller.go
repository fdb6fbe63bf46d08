package controller

import (
	"time"

	"ai-docchat-be/internal/apperror"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	SaveHistory(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	UpdateCredentials(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService     service.IChatService
	historyService  service.IHistoryService
	redisClient     *redis.Client
	rateLimitPerMin int
}

func NewChatController(
	chatService service.IChatService,
	historyService service.IHistoryService,
	redisClient *redis.Client,
	rateLimitPerMin int,
) IChatController {
	return &chatController{
		chatService:     chatService,
		historyService:  historyService,
		redisClient:     redisClient,
		rateLimitPerMin: rateLimitPerMin,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	// Only the generation route is rate limited; history calls are cheap.
	h.Post("message", serverutils.RateLimitMiddleware(c.redisClient, c.rateLimitPerMin, time.Minute), c.SendMessage)
	h.Post("history", c.SaveHistory)
	h.Get("sessions", c.ListSessions)
	h.Get("session/:sessionId", c.GetSession)
	h.Delete("session/:sessionId", c.DeleteSession)
	h.Put("credentials", c.UpdateCredentials)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidRequest("Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate chat reply", res))
}

func (c *chatController) SaveHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SaveHistoryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidRequest("Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.historyService.Save(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save chat history", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.historyService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chat sessions", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId := ctx.Params("sessionId")

	res, err := c.historyService.Get(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat session", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId := ctx.Params("sessionId")

	if err := c.historyService.Delete(ctx.Context(), userId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

func (c *chatController) UpdateCredentials(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.UpdateCredentialsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidRequest("Invalid request body.")
	}

	if err := c.chatService.UpdateCredentials(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update API credentials", nil))
}
