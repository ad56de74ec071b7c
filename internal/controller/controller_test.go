package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func acquireCtx(t *testing.T) (*fiber.App, *fiber.Ctx) {
	t.Helper()
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	t.Cleanup(func() { app.ReleaseCtx(ctx) })
	return app, ctx
}

func TestCurrentUserId_ValidClaim(t *testing.T) {
	_, ctx := acquireCtx(t)
	want := uuid.New()
	ctx.Locals("user_id", want.String())

	got, err := currentUserId(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCurrentUserId_MissingClaim(t *testing.T) {
	_, ctx := acquireCtx(t)

	_, err := currentUserId(ctx)
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}

func TestCurrentUserId_NonStringClaim(t *testing.T) {
	_, ctx := acquireCtx(t)
	ctx.Locals("user_id", 12345)

	require.NotPanics(t, func() {
		_, err := currentUserId(ctx)
		var fiberErr *fiber.Error
		require.ErrorAs(t, err, &fiberErr)
		assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
	})
}

func TestCurrentUserId_MalformedUUID(t *testing.T) {
	_, ctx := acquireCtx(t)
	ctx.Locals("user_id", "not-a-uuid")

	_, err := currentUserId(ctx)
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusUnauthorized, fiberErr.Code)
}
