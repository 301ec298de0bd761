package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"curefront/internal/app/ports"
	"curefront/internal/app/replay"
	"curefront/internal/app/sim"
	"curefront/internal/domain/outbreak"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

type eventStream interface {
	HandleUpgrade(ctx *app.RequestContext) error
}

type Handler struct {
	Sim      *sim.Coordinator
	ReplayUC replay.UseCase
	KPI      kpiSnapshotProvider
	Stream   eventStream
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api/sim")
	api.GET("/provinces", h.provinces)
	api.GET("/provinces/:region", h.province)
	api.GET("/global", h.global)
	api.GET("/outcome", h.outcome)
	api.GET("/outposts/quote", h.quoteOutpost)
	api.POST("/outposts", h.buildOutpost)
	api.POST("/reset", h.reset)
	api.GET("/events", h.events)

	s.GET("/ws/events", h.stream)
	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) provinces(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{
		"day_index": h.Sim.CurrentDay(),
		"provinces": h.Sim.Provinces(),
	})
}

func (h Handler) province(_ context.Context, ctx *app.RequestContext) {
	region := string(ctx.Param("region"))
	p, ok := h.Sim.Province(region)
	if !ok {
		writeErrorBody(ctx, consts.StatusNotFound, "invalid_region", "unknown region: "+region)
		return
	}
	ctx.JSON(consts.StatusOK, p)
}

func (h Handler) global(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Sim.Global())
}

func (h Handler) outcome(_ context.Context, ctx *app.RequestContext) {
	outcome, ok := h.Sim.Outcome()
	if !ok {
		writeErrorBody(ctx, consts.StatusNotFound, "not_decided", "outcome not decided yet")
		return
	}
	ctx.JSON(consts.StatusOK, outcome)
}

func (h Handler) quoteOutpost(_ context.Context, ctx *app.RequestContext) {
	region := strings.TrimSpace(string(ctx.Query("region")))
	if region == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "region query parameter is required")
		return
	}
	quote, err := h.Sim.QuoteOutpost(region)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, quote)
}

type buildRequest struct {
	RegionID string `json:"region_id"`
}

func (h Handler) buildOutpost(c context.Context, ctx *app.RequestContext) {
	var body buildRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if strings.TrimSpace(body.RegionID) == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "region_id is required")
		return
	}

	receipt, err := h.Sim.BuildOutpost(c, body.RegionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, receipt)
}

func (h Handler) reset(c context.Context, ctx *app.RequestContext) {
	if _, err := h.Sim.Reset(c); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"day_index": h.Sim.CurrentDay(),
		"provinces": h.Sim.Provinces(),
		"global":    h.Sim.Global(),
	})
}

func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SessionID:    h.Sim.SessionID,
		EventType:    string(ctx.Query("type")),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) stream(_ context.Context, ctx *app.RequestContext) {
	if h.Stream == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "event stream not configured")
		return
	}
	if err := h.Stream.HandleUpgrade(ctx); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "upgrade_failed", "websocket upgrade failed")
	}
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, outbreak.ErrUnknownRegion):
		writeErrorBody(ctx, consts.StatusNotFound, sim.RefusalCode(err), err.Error())
	case errors.Is(err, outbreak.ErrProvinceFullyInfected),
		errors.Is(err, outbreak.ErrNotEnoughZar),
		errors.Is(err, outbreak.ErrNotInitialized):
		writeErrorBody(ctx, consts.StatusConflict, sim.RefusalCode(err), err.Error())
	case errors.Is(err, outbreak.ErrEmptyCatalog):
		writeErrorBody(ctx, consts.StatusConflict, "empty_catalog", err.Error())
	case errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
