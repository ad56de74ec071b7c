package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"
	"ai-research-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IResearchController interface {
	RegisterRoutes(r fiber.Router)
	StartResearch(ctx *fiber.Ctx) error
	ShowSolution(ctx *fiber.Ctx) error
	GetAllSolutions(ctx *fiber.Ctx) error
}

type researchController struct {
	researchService service.IResearchService
	userService     service.IUserService
}

func NewResearchController(researchService service.IResearchService, userService service.IUserService) IResearchController {
	return &researchController{
		researchService: researchService,
		userService:     userService,
	}
}

func (c *researchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.StartResearch)
	h.Get("solutions", c.GetAllSolutions)
	h.Get("solutions/:id", c.ShowSolution)
}

// StartResearch runs the pipeline and streams its events as SSE. The
// response stream outlives the handler, so the run is bound to a
// background context and cancelled through the writer when the client
// disconnects.
func (c *researchController) StartResearch(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.StartResearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	user, err := c.userService.Show(ctx.Context(), userId)
	if err != nil {
		return err
	}
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unknown user")
	}

	st, err := c.researchService.StartResearch(context.Background(), user, &req)
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// Whatever ends the loop, the producer must be told to stop
		defer st.Cancel()

		for ev := range st.Events() {
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			// Flushing per event doubles as the disconnect probe
			if err := w.Flush(); err != nil {
				return
			}
			if ev.Type == stream.EventEnd {
				return
			}
		}
	}))

	return nil
}

func (c *researchController) ShowSolution(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid solution id")
	}

	res, err := c.researchService.ShowSolution(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Solution not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show solution", res))
}

func (c *researchController) GetAllSolutions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.researchService.GetAllSolutions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get solutions", res))
}
