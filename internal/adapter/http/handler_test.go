package httpadapter

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	staticcatalog "curefront/internal/adapter/catalog/static"
	"curefront/internal/adapter/metrics/inmemory"
	memoryrepo "curefront/internal/adapter/repo/memory"
	"curefront/internal/app/replay"
	"curefront/internal/app/sim"
	"curefront/internal/domain/outbreak"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

func newTestHandler(t *testing.T) Handler {
	t.Helper()
	store := memoryrepo.NewStore()
	coordinator := &sim.Coordinator{
		TxManager: memoryrepo.NewTxManager(store),
		Sessions:  memoryrepo.NewSessionRepo(store),
		Events:    memoryrepo.NewEventRepo(store),
		Catalog:   staticcatalog.Provider{},
		Metrics:   inmemory.NewRecorder(),
		Engine:    outbreak.NewEngine(outbreak.DefaultTuning(), rand.New(rand.NewSource(7))),
		SessionID: "test-session",
		Now:       func() time.Time { return time.Unix(9000, 0).UTC() },
	}
	if err := coordinator.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return Handler{
		Sim:      coordinator,
		ReplayUC: replay.UseCase{Events: memoryrepo.NewEventRepo(store)},
		KPI:      inmemory.NewRecorder(),
	}
}

func TestProvinces_ReturnsCatalogOrder(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}

	h.provinces(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body struct {
		DayIndex  int                      `json:"day_index"`
		Provinces []outbreak.ProvinceState `json:"provinces"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Provinces) != len(staticcatalog.DefaultRegions()) {
		t.Fatalf("expected %d provinces, got %d", len(staticcatalog.DefaultRegions()), len(body.Provinces))
	}
	if body.Provinces[0].RegionID != "eastern-cape" {
		t.Fatalf("expected catalog order, got first=%q", body.Provinces[0].RegionID)
	}
}

func TestProvince_UnknownRegionIs404(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "region", Value: "atlantis"}}

	h.province(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["code"], "invalid_region"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestProvince_LookupIsCaseInsensitive(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "region", Value: "GAUTENG"}}

	h.province(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var p outbreak.ProvinceState
	if err := json.Unmarshal(ctx.Response.Body(), &p); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if p.RegionID != "gauteng" {
		t.Fatalf("unexpected province: %+v", p)
	}
}

func TestOutcome_NotDecidedIs404(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}

	h.outcome(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["code"], "not_decided"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestQuoteOutpost_RequiresRegionParam(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}

	h.quoteOutpost(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestQuoteOutpost_OK(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.QueryArgs().Set("region", "gauteng")

	h.quoteOutpost(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var quote outbreak.BuildQuote
	if err := json.Unmarshal(ctx.Response.Body(), &quote); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if quote.RegionID != "gauteng" || quote.CostZar <= 0 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestBuildOutpost_OK(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"region_id":"gauteng"}`))

	h.buildOutpost(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusCreated; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var receipt outbreak.BuildReceipt
	if err := json.Unmarshal(ctx.Response.Body(), &receipt); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if receipt.OutpostCount != 1 {
		t.Fatalf("expected outpost count 1, got %d", receipt.OutpostCount)
	}
}

func TestBuildOutpost_UnknownRegionIs404(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"region_id":"atlantis"}`))

	h.buildOutpost(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["code"], "invalid_region"; got != want {
		t.Fatalf("error code mismatch: got=%q want=%q", got, want)
	}
}

func TestBuildOutpost_MissingRegionIs400(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{}`))

	h.buildOutpost(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestBuildOutpost_RefusalsMapToConflict(t *testing.T) {
	h := newTestHandler(t)

	// Drain the budget so the next build is refused.
	for {
		ctx := &app.RequestContext{}
		ctx.Request.SetBody([]byte(`{"region_id":"gauteng"}`))
		h.buildOutpost(context.Background(), ctx)
		if ctx.Response.StatusCode() != consts.StatusCreated {
			if got, want := ctx.Response.StatusCode(), consts.StatusConflict; got != want {
				t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
			}
			var body map[string]map[string]string
			if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if got, want := body["error"]["code"], "not_enough_zar"; got != want {
				t.Fatalf("error code mismatch: got=%q want=%q", got, want)
			}
			return
		}
	}
}

func TestReset_ReturnsFreshSnapshot(t *testing.T) {
	h := newTestHandler(t)

	build := &app.RequestContext{}
	build.Request.SetBody([]byte(`{"region_id":"gauteng"}`))
	h.buildOutpost(context.Background(), build)
	if build.Response.StatusCode() != consts.StatusCreated {
		t.Fatalf("build failed: %s", build.Response.Body())
	}

	ctx := &app.RequestContext{}
	h.reset(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}

	global := h.Sim.Global()
	if global.TotalOutposts != 0 {
		t.Fatalf("expected reset to clear outposts, got %+v", global)
	}
}

func TestEvents_ReturnsReplay(t *testing.T) {
	h := newTestHandler(t)
	ctx := &app.RequestContext{}
	ctx.QueryArgs().Set("limit", "5")

	h.events(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	var resp replay.Response
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Events) == 0 {
		t.Fatalf("expected bootstrap events in replay")
	}
}

func TestKPI_NotConfigured(t *testing.T) {
	h := Handler{}
	ctx := &app.RequestContext{}

	h.kpi(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNotFound; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}

func TestWriteError_DefaultIsInternal(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, context.DeadlineExceeded)

	if got, want := ctx.Response.StatusCode(), consts.StatusInternalServerError; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
}
