package deals

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/srivatsav-tech/hubspot-data/pkg/adapters"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/api"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/domain"
	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
)

const dateLayout = "2006-01-02"

// AnalysisService is the slice of the analysis layer the handler needs.
type AnalysisService interface {
	Snapshot(ctx context.Context) (domain.Snapshot, []domain.DealRecord, error)
	BuildMatrix(ctx context.Context, req domain.AnalysisRequest) (*domain.Matrix, error)
	StagnationReport(ctx context.Context, req domain.AnalysisRequest) ([]domain.StagnationRecord, error)
	InvalidateSnapshot()
}

// Refresher triggers a fresh extraction from the CRM. Optional: when nil, the
// refresh endpoint reports the capability as unavailable.
type Refresher interface {
	Run(ctx context.Context) (store.Snapshot, error)
}

// SnapshotLister enumerates the persisted extraction batches.
type SnapshotLister interface {
	List(ctx context.Context) ([]store.Snapshot, error)
}

type Handler struct {
	catalog   *pipeline.StageCatalog
	analysis  AnalysisService
	snapshots SnapshotLister
	refresher Refresher
}

func NewHandler(
	catalog *pipeline.StageCatalog,
	analysis AnalysisService,
	snapshots SnapshotLister,
	refresher Refresher,
) *Handler {
	return &Handler{
		catalog:   catalog,
		analysis:  analysis,
		snapshots: snapshots,
		refresher: refresher,
	}
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshots, err := h.snapshots.List(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusServiceUnavailable, err)
		return
	}

	out := make([]api.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, api.Snapshot{
			ID:          s.ID,
			ExtractedAt: s.ExtractedAt.Format(time.RFC3339),
			Source:      s.Source,
			DealCount:   s.DealCount,
		})
	}
	writeJSON(ctx, w, out)
}

func (h *Handler) ListStages(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, adapters.MapCatalogToApi(h.catalog))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, deals, err := h.analysis.Snapshot(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusServiceUnavailable, err)
		return
	}
	out := adapters.MapSnapshotDomainToApi(snap)
	out.DealCount = len(deals)
	writeJSON(ctx, w, out)
}

func (h *Handler) GetMatrix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRequest(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	m, err := h.analysis.BuildMatrix(ctx, req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	writeJSON(ctx, w, adapters.MapMatrixDomainToApi(*m))
}

func (h *Handler) GetStagnation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseRequest(r)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	records, err := h.analysis.StagnationReport(ctx, req)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	writeJSON(ctx, w, adapters.MapStagnationDomainToApi(records))
}

func (h *Handler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.refresher == nil {
		writeError(ctx, w, http.StatusNotImplemented, errNoRefresher)
		return
	}

	snap, err := h.refresher.Run(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusBadGateway, err)
		return
	}
	h.analysis.InvalidateSnapshot()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(ctx, w, api.Snapshot{
		ID:          snap.ID,
		ExtractedAt: snap.ExtractedAt.Format(time.RFC3339),
		Source:      snap.Source,
		DealCount:   snap.DealCount,
	})
}

// parseRequest maps the query string onto an analysis request. Range dates are
// plain days; everything else is optional.
func parseRequest(r *http.Request) (domain.AnalysisRequest, error) {
	q := r.URL.Query()
	req := domain.AnalysisRequest{
		StageFilter:    splitParam(q.Get("stage")),
		DealNameFilter: splitParam(q.Get("deal")),
		CampaignFilter: splitParam(q.Get("campaign")),
	}

	from, err := time.Parse(dateLayout, q.Get("from"))
	if err != nil {
		return req, &paramError{name: "from", err: err}
	}
	to, err := time.Parse(dateLayout, q.Get("to"))
	if err != nil {
		return req, &paramError{name: "to", err: err}
	}
	req.From, req.To = from, to

	req.Frequency, err = domain.ParseFrequency(q.Get("frequency"))
	if err != nil {
		return req, &paramError{name: "frequency", err: err}
	}

	if v := q.Get("created_from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, &paramError{name: "created_from", err: err}
		}
		req.CreatedFrom = &t
	}
	if v := q.Get("created_to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return req, &paramError{name: "created_to", err: err}
		}
		req.CreatedTo = &t
	}

	if v := q.Get("stagnant_threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, &paramError{name: "stagnant_threshold", err: err}
		}
		req.StagnantOnly = true
		req.StagnantThreshold = n
	}

	return req, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string { return "invalid " + e.name + " parameter: " + e.err.Error() }
func (e *paramError) Unwrap() error { return e.err }

var errNoRefresher = &refresherError{}

type refresherError struct{}

func (*refresherError) Error() string { return "extraction is not configured on this server" }

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	zerolog.Ctx(ctx).Error().Err(err).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		zerolog.Ctx(ctx).Error().Err(encErr).Msg("failed to encode error response")
	}
}
