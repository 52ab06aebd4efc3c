package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/opcopilot/opcopilot/internal/observability"
	"github.com/opcopilot/opcopilot/internal/web"
	apperrors "github.com/opcopilot/opcopilot/pkg/util/errorutil"
)

const htmlErrorsKey = "html_errors"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger sits outside the error handler so it sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// htmlErrors marks a route whose errors are rendered as pages.
func htmlErrors(c *fiber.Ctx) error {
	c.Locals(htmlErrorsKey, true)
	return c.Next()
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(observability.RoutePath(c), c.Method(), domainErr.Code)
			if domainErr.HTTPStatus >= 500 {
				logger.Error("request failed", zap.Error(domainErr))
			}
			c.Status(domainErr.HTTPStatus)

			if html, _ := c.Locals(htmlErrorsKey).(bool); html {
				c.Type("html", "utf-8")
				err = web.ErrorPage(domainErr.HTTPStatus, domainErr.Message).Render(c.UserContext(), c.Response().BodyWriter())
				return
			}

			body := fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}
			if len(domainErr.Details) > 0 {
				body["details"] = domainErr.Details
			}
			err = c.JSON(fiber.Map{"error": body})
		}()
		return c.Next()
	}
}
