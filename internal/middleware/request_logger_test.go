package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_FailingErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return errors.New("cannot render error")
		},
	})
	app.Use(RequestLogger(zap.New(core), nil))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}

	failures := logs.FilterMessage("error handler failed").All()
	if len(failures) != 1 {
		t.Fatalf("Expected the handler failure to be logged once, got %d", len(failures))
	}
	fields := failures[0].ContextMap()
	if fields["error"] != "cannot render error" || fields["cause"] != "boom" {
		t.Errorf("Expected both errors in the entry, got %v", fields)
	}

	requests := logs.FilterMessage("request").All()
	if len(requests) != 1 || requests[0].Level != zapcore.ErrorLevel {
		t.Errorf("Expected one error-level request entry, got %+v", requests)
	}
}

func TestRequestLogger_StatusFromErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), nil))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	if err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	requests := logs.FilterMessage("request").All()
	if len(requests) != 1 || requests[0].Level != zapcore.WarnLevel {
		t.Errorf("Expected one warn-level request entry, got %+v", requests)
	}
	if got := logs.FilterMessage("error handler failed").Len(); got != 0 {
		t.Errorf("Expected no handler failure, got %d", got)
	}
}
