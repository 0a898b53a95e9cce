// Package http is the echo-based inbound adapter. Request bodies are checked
// against the embedded OpenAPI schemas before they reach the use cases.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/application/usecases/queries"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/stop"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/pkg/metrics"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type CreateRouteHandler interface {
	Handle(ctx context.Context, cmd commands.CreateRouteCommand) error
}

type GetRouteHandler interface {
	Handle(ctx context.Context, query queries.GetRouteQuery) (*queries.GetRouteQueryResponse, error)
}

type OptimizeRouteHandler interface {
	Handle(ctx context.Context, cmd commands.OptimizeRouteCommand) (services.Plan, error)
}

type ReorderStopsHandler interface {
	Handle(ctx context.Context, cmd commands.ReorderStopsCommand) (services.Plan, error)
}

type TransitionStopHandler interface {
	Handle(ctx context.Context, cmd commands.TransitionStopCommand) (stop.Status, error)
}

type GenerateOtpHandler interface {
	Handle(ctx context.Context, cmd commands.GenerateOtpCommand) (commands.GenerateOtpResult, error)
}

type VerifyOtpHandler interface {
	Handle(ctx context.Context, cmd commands.VerifyOtpCommand) error
}

type CaptureEvidenceHandler interface {
	Handle(ctx context.Context, cmd commands.CaptureEvidenceCommand) error
}

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateRoute     CreateRouteHandler
	GetRoute        GetRouteHandler
	OptimizeRoute   OptimizeRouteHandler
	ReorderStops    ReorderStopsHandler
	TransitionStop  TransitionStopHandler
	GenerateOtp     GenerateOtpHandler
	VerifyOtp       VerifyOtpHandler
	CaptureEvidence CaptureEvidenceHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	doc      *openapi3.T
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, doc *openapi3.T, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		doc:      doc,
		metrics:  m,
		logger:   logger.With("component", "http"),
	}
}

// maxBodySize caps request bodies; larger requests are answered with 413.
const maxBodySize = "1M"

// RegisterHandlers mounts the API, health, metrics and documentation routes.
func (s *Server) RegisterHandlers(e *echo.Echo) error {
	if err := registerDocs(s.doc); err != nil {
		return err
	}

	e.Use(s.observe)
	e.Use(middleware.BodyLimit(maxBodySize))

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.GET("/swagger/*", swaggerHandler)

	v1 := e.Group("/api/v1")
	v1.POST("/routes", s.CreateRoute)
	v1.GET("/routes/:routeId", s.GetRoute)
	v1.POST("/routes/:routeId/optimize", s.OptimizeRoute)
	v1.PUT("/routes/:routeId/sequence", s.ReorderStops)
	v1.POST("/stops/:stopId/transitions", s.TransitionStop)
	v1.POST("/stops/:stopId/otp", s.GenerateOtp)
	v1.POST("/stops/:stopId/otp/verify", s.VerifyOtp)
	v1.POST("/stops/:stopId/evidence", s.CaptureEvidence)

	return nil
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// CreateRoute handles POST /api/v1/routes.
func (s *Server) CreateRoute(ctx echo.Context) error {
	var body NewRoute
	if err := s.bindBody(ctx, "NewRoute", true, &body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := newCreateRouteCommand(body)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.CreateRoute.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, RouteCreated{ID: cmd.RouteID().Bytes()})
}

// GetRoute handles GET /api/v1/routes/:routeId.
func (s *Server) GetRoute(ctx echo.Context) error {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetRouteQuery(routeID)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.GetRoute.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toRoute(result))
}

// OptimizeRoute handles POST /api/v1/routes/:routeId/optimize.
func (s *Server) OptimizeRoute(ctx echo.Context) error {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body OptimizeRequest
	if err = s.bindBody(ctx, "OptimizeRequest", false, &body); err != nil {
		return s.fail(ctx, err)
	}

	start, err := startPoint(body)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewOptimizeRouteCommand(routeID, start)
	if err != nil {
		return s.fail(ctx, err)
	}

	plan, err := s.handlers.OptimizeRoute.Handle(ctx.Request().Context(), cmd)
	s.observePlan("optimize", plan, err)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toPlan(routeID, plan))
}

// ReorderStops handles PUT /api/v1/routes/:routeId/sequence.
func (s *Server) ReorderStops(ctx echo.Context) error {
	routeID, err := pathUUID(ctx, "routeId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body ReorderRequest
	if err = s.bindBody(ctx, "ReorderRequest", true, &body); err != nil {
		return s.fail(ctx, err)
	}

	ids := make([]kernel.UUID, 0, len(body.StopIDs))
	for _, raw := range body.StopIDs {
		id, idErr := kernel.UUIDFromBytes(raw[:])
		if idErr != nil {
			return s.fail(ctx, idErr)
		}
		ids = append(ids, id)
	}

	cmd, err := commands.NewReorderStopsCommand(routeID, ids)
	if err != nil {
		return s.fail(ctx, err)
	}

	plan, err := s.handlers.ReorderStops.Handle(ctx.Request().Context(), cmd)
	s.observePlan("reorder", plan, err)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toPlan(routeID, plan))
}

// TransitionStop handles POST /api/v1/stops/:stopId/transitions.
func (s *Server) TransitionStop(ctx echo.Context) error {
	stopID, err := pathUUID(ctx, "stopId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body TransitionRequest
	if err = s.bindBody(ctx, "TransitionRequest", true, &body); err != nil {
		return s.fail(ctx, err)
	}

	event, err := stop.ParseEvent(body.Event)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewTransitionStopCommand(stopID, event, services.TransitionPayload{
		SignatureRef: body.SignatureRef,
		PhotoRefs:    body.PhotoRefs,
		Reason:       body.Reason,
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	status, err := s.handlers.TransitionStop.Handle(ctx.Request().Context(), cmd)
	s.metrics.StopTransitions.WithLabelValues(event.String(), outcome(err)).Inc()
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, StopStatus{StopID: stopID.Bytes(), Status: status.String()})
}

// GenerateOtp handles POST /api/v1/stops/:stopId/otp.
func (s *Server) GenerateOtp(ctx echo.Context) error {
	stopID, err := pathUUID(ctx, "stopId")
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewGenerateOtpCommand(stopID)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.GenerateOtp.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, Otp{Code: result.Code, ExpiresAt: result.ExpiresAt})
}

// VerifyOtp handles POST /api/v1/stops/:stopId/otp/verify.
func (s *Server) VerifyOtp(ctx echo.Context) error {
	stopID, err := pathUUID(ctx, "stopId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body VerifyOtpRequest
	if err = s.bindBody(ctx, "VerifyOtpRequest", true, &body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewVerifyOtpCommand(stopID, body.Code)
	if err != nil {
		return s.fail(ctx, err)
	}

	err = s.handlers.VerifyOtp.Handle(ctx.Request().Context(), cmd)
	s.metrics.OtpVerifications.WithLabelValues(otpResult(err)).Inc()
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OtpVerification{Verified: true})
}

// CaptureEvidence handles POST /api/v1/stops/:stopId/evidence.
func (s *Server) CaptureEvidence(ctx echo.Context) error {
	stopID, err := pathUUID(ctx, "stopId")
	if err != nil {
		return s.fail(ctx, err)
	}

	var body EvidenceRequest
	if err = s.bindBody(ctx, "EvidenceRequest", true, &body); err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCaptureEvidenceCommand(stopID, body.SignatureRef, body.PhotoRefs)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.CaptureEvidence.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, EvidenceAccepted{Accepted: true})
}

// errBadRequest marks malformed input that never reached the domain.
var errBadRequest = errors.New("bad request")

// bindBody validates the JSON body against the named schema and decodes it into dest.
// An empty body is accepted when required is false.
func (s *Server) bindBody(ctx echo.Context, schemaName string, required bool, dest any) error {
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if required {
			return fmt.Errorf("%w: request body is required", errBadRequest)
		}
		return nil
	}

	var generic any
	if err = json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	schema, ok := s.doc.Components.Schemas[schemaName]
	if !ok || schema.Value == nil {
		return fmt.Errorf("schema %s is not defined", schemaName)
	}
	if err = schema.Value.VisitJSON(generic); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	if err = json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var raw openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: invalid format for parameter %s: %w", errBadRequest, name, err)
	}

	return kernel.UUIDFromBytes(raw[:])
}

func (s *Server) fail(ctx echo.Context, err error) error {
	code := http.StatusBadRequest
	if !errors.Is(err, errBadRequest) {
		code = statusFor(err)
	}

	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method,
			"route", ctx.Path(),
			"error", err,
		)
		message = http.StatusText(code)
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}

func (s *Server) observePlan(kind string, plan services.Plan, err error) {
	s.metrics.RouteOptimizations.WithLabelValues(kind, outcome(err)).Inc()
	if err == nil {
		s.metrics.OptimizedDistanceKm.Observe(plan.TotalDistanceKm)
	}
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeError
	}
	return metrics.OutcomeSuccess
}
