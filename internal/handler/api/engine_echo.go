package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"MillionaireMaker/internal/domain/models"
	"MillionaireMaker/internal/service/ratelimit"
	"MillionaireMaker/internal/usecase"
	xhttp "MillionaireMaker/pkg/http"
	xlogger "MillionaireMaker/pkg/logger"
)

// EngineHandler serves the engine operations under /api.
type EngineHandler struct {
	logger *xlogger.Logger
	engine *usecase.Engine
	rl     *ratelimit.Limiter
}

// NewEngineHandler creates the handler. rl may be nil to disable limiting.
func NewEngineHandler(logger *xlogger.Logger, engine *usecase.Engine, rl *ratelimit.Limiter) *EngineHandler {
	registerValidations()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &EngineHandler{logger: logger, engine: engine, rl: rl}
}

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/games", h.Games)
	g.GET("/data/:game", h.Data)
	g.GET("/profile/:game", h.Profile)
	g.POST("/check/:game", h.Check)

	var heavy []echo.MiddlewareFunc
	if h.rl != nil {
		heavy = append(heavy, h.rl.Middleware())
	}
	g.POST("/generate/:game", h.Generate, heavy...)
	g.POST("/analyze/:game", h.Analyze, heavy...)
	g.POST("/autotune/:game", h.AutoTune, heavy...)
	g.POST("/reduction/:game", h.Reduction, heavy...)
}

func (h *EngineHandler) Health(c echo.Context) error {
	res := h.engine.Health(c.Request().Context())
	if !res.Healthy() {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, res)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Games(c echo.Context) error {
	return xhttp.CachedResponse(c, 5*time.Minute, true, h.engine.Games())
}

func (h *EngineHandler) Data(c echo.Context) error {
	req := &models.GameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Draws(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "data", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Profile(c echo.Context) error {
	req := &models.GameRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Profile(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "profile", err)
	}
	return xhttp.CachedResponse(c, time.Minute, false, res)
}

func (h *EngineHandler) Generate(c echo.Context) error {
	req := &models.GenerateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Generate(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "generate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Analyze(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) AutoTune(c echo.Context) error {
	req := &models.AutoTuneRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.AutoTune(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "autotune", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Reduction(c echo.Context) error {
	req := &models.ReductionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Reduction(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "reduction", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Check(c echo.Context) error {
	req := &models.CheckRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.engine.Check(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "check", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) fail(c echo.Context, op string, err error) error {
	return respondError(c, h.logger, op, err)
}

func respondError(c echo.Context, logger *xlogger.Logger, op string, err error) error {
	appErr := toAppError(err)
	fields := []xlogger.Field{xlogger.String("op", op), xlogger.Int("status", appErr.Status), xlogger.Error(err)}
	if appErr.Server() {
		logger.Error("usecase error", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
