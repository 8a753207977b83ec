package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/roach88/qtrace/internal/divergence"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/recorder"
	"github.com/roach88/qtrace/internal/replay"
	"github.com/roach88/qtrace/internal/service"
)

const maxBodyBytes = 1 << 20

// Error codes outside the ir taxonomy.
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternal       = "INTERNAL"
)

// Service is what the handlers need from the query layer.
type Service interface {
	List(ctx context.Context, page, limit int) (ir.ExecutionPage, error)
	Overview(ctx context.Context, id string) (service.Overview, error)
	Graph(ctx context.Context, id string) (ir.Graph, error)
	Replay(ctx context.Context, id string) (replay.Replay, error)
	Step(ctx context.Context, id string, index int) (replay.Step, error)
	Compare(ctx context.Context, a, b string) (divergence.Report, error)
	Record(ctx context.Context, req service.RecordRequest) (*ir.Execution, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type api struct {
	svc    Service
	health HealthCheck
}

// NewHandler returns the API routes. health may be nil.
func NewHandler(svc Service, health HealthCheck) http.Handler {
	a := &api{svc: svc, health: health}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/executions", a.handleList)
	mux.HandleFunc("POST /api/executions", a.handleRecord)
	mux.HandleFunc("GET /api/executions/{id}", a.handleOverview)
	mux.HandleFunc("GET /api/executions/{id}/graph", a.handleGraph)
	mux.HandleFunc("GET /api/replay/{id}", a.handleReplay)
	mux.HandleFunc("GET /api/replay/{id}/step/{step}", a.handleStep)
	mux.HandleFunc("GET /api/compare/{a}/{b}", a.handleCompare)
	return mux
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": ir.Version,
	})
}

func (a *api) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	limit, err := queryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	out, err := a.svc.List(r.Context(), page, limit)
	respond(w, out, err)
}

func (a *api) handleOverview(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Overview(r.Context(), r.PathValue("id"))
	respond(w, out, err)
}

func (a *api) handleGraph(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Graph(r.Context(), r.PathValue("id"))
	respond(w, out, err)
}

func (a *api) handleReplay(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Replay(r.Context(), r.PathValue("id"))
	respond(w, out, err)
}

func (a *api) handleStep(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		writeBadRequest(w, fmt.Errorf("step must be an integer, got %q", r.PathValue("step")))
		return
	}
	out, err := a.svc.Step(r.Context(), r.PathValue("id"), index)
	respond(w, out, err)
}

func (a *api) handleCompare(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Compare(r.Context(), r.PathValue("a"), r.PathValue("b"))
	respond(w, out, err)
}

func (a *api) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req service.RecordRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, fmt.Errorf("decode body: %w", err))
		return
	}
	if req.Circuit == "" {
		writeBadRequest(w, errors.New("circuit is required"))
		return
	}

	exec, err := a.svc.Record(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, exec.ExecutionMeta)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func respond(w http.ResponseWriter, body any, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// statusFor maps an error onto an HTTP status and response body.
func statusFor(err error) (int, errorBody) {
	body := errorBody{Code: string(ir.CodeOf(err)), Message: err.Error()}

	var oor *ir.StepOutOfRangeError
	if errors.As(err, &oor) {
		body.Details = map[string]any{"index": oor.Index, "max_index": oor.MaxIndex}
		return http.StatusBadRequest, body
	}
	var e *ir.Error
	if errors.As(err, &e) {
		body.Message = e.Message
		if e.ExecutionID != "" {
			body.Details = map[string]any{"execution_id": e.ExecutionID}
		}
	}

	switch ir.CodeOf(err) {
	case ir.ErrCodeNotFound:
		return http.StatusNotFound, body
	case ir.ErrCodeMalformedLog:
		return http.StatusUnprocessableEntity, body
	case ir.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable, body
	}
	if errors.Is(err, recorder.ErrInvalidRequest) {
		return http.StatusBadRequest, errorBody{Code: codeInvalidRequest, Message: err.Error()}
	}
	return http.StatusInternalServerError, errorBody{Code: codeInternal, Message: err.Error()}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, body := statusFor(err)
	writeError(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, errorBody{Code: codeInvalidRequest, Message: err.Error()})
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	writeJSON(w, status, map[string]any{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
