package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/ir"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Pinger reports store reachability for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// API serves the function, widget and gadget endpoints.
type API struct {
	engine    *engine.Engine
	inventory *engine.Inventory
	store     Pinger
	logger    *slog.Logger
}

// New creates an API. store may be nil, in which case /readyz has no checks.
func New(e *engine.Engine, inv *engine.Inventory, store Pinger, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{engine: e, inventory: inv, store: store, logger: logger}
}

// Handler returns the routed handler wrapped in the standard middleware.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/function", a.executeFunction)
	mux.HandleFunc("GET /api/function/{uuid}", a.getFunction)
	mux.HandleFunc("GET /api/function/{uuid}/replay", a.replayFunction)
	mux.HandleFunc("GET /api/gadget/{gadget}/functions", a.functionHistory)

	mux.HandleFunc("POST /api/widget", a.createWidget)
	mux.HandleFunc("GET /api/widget", a.listWidgets)
	mux.HandleFunc("GET /api/widget/{name}", a.getWidget)
	mux.HandleFunc("PUT /api/widget/{name}", a.updateWidget)
	mux.HandleFunc("DELETE /api/widget/{name}", a.deleteWidget)

	mux.HandleFunc("POST /api/gadget", a.createGadget)
	mux.HandleFunc("GET /api/gadget", a.listGadgets)
	mux.HandleFunc("GET /api/gadget/{name}", a.getGadget)
	mux.HandleFunc("PUT /api/gadget/{name}", a.updateGadget)
	mux.HandleFunc("DELETE /api/gadget/{name}", a.deleteGadget)

	var checks []ReadinessCheck
	if a.store != nil {
		checks = append(checks, ReadinessCheck{Name: "store", Check: a.store.Ping})
	}
	mux.HandleFunc("GET /healthz", Healthz("gizmo"))
	mux.HandleFunc("GET /readyz", Readyz("gizmo", checks...))

	return Wrap(a.logger, mux)
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Success   bool        `json:"success"`
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// writeError maps err to a status. Domain errors are 409, except that
// notFound (when set) is 404. Everything else is a 500 whose detail is logged
// but not returned.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, notFound engine.ErrorCode) {
	requestID, _ := RequestIDFromContext(r.Context())

	code := engine.CodeOf(err)
	if code == "" {
		a.logger.Error("request failed", "request_id", requestID, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:     errorDetail{Code: "INTERNAL", Message: "internal server error"},
			RequestID: requestID,
		})
		return
	}

	status := http.StatusConflict
	if notFound != "" && code == notFound {
		status = http.StatusNotFound
	}

	var de *engine.Error
	errors.As(err, &de)
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: string(code), Message: de.Message},
		RequestID: requestID,
	})
}

func (a *API) writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	requestID, _ := RequestIDFromContext(r.Context())
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:     errorDetail{Code: "MALFORMED_BODY", Message: err.Error()},
		RequestID: requestID,
	})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func (a *API) executeFunction(w http.ResponseWriter, r *http.Request) {
	var req ir.ExecuteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeBadRequest(w, r, err)
		return
	}

	result, err := a.engine.Execute(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "function": result})
}

func (a *API) getFunction(w http.ResponseWriter, r *http.Request) {
	result, err := a.engine.GetByToken(r.Context(), r.PathValue("uuid"))
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeResultNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "function": result})
}

func (a *API) replayFunction(w http.ResponseWriter, r *http.Request) {
	res, err := a.engine.Replay(r.Context(), r.PathValue("uuid"))
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeResultNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "replay": res})
}

func (a *API) functionHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.writeBadRequest(w, r, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	results, err := a.engine.History(r.Context(), r.PathValue("gadget"), limit)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	if results == nil {
		results = []ir.FunctionResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "functions": results})
}

func (a *API) createWidget(w http.ResponseWriter, r *http.Request) {
	var body ir.Widget
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeBadRequest(w, r, err)
		return
	}
	widget, err := a.inventory.CreateWidget(r.Context(), body)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "widget": widget})
}

func (a *API) listWidgets(w http.ResponseWriter, r *http.Request) {
	widgets, err := a.inventory.ListWidgets(r.Context())
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "widgets": widgets})
}

func (a *API) getWidget(w http.ResponseWriter, r *http.Request) {
	widget, err := a.inventory.GetWidget(r.Context(), r.PathValue("name"))
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeWidgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "widget": widget})
}

func (a *API) updateWidget(w http.ResponseWriter, r *http.Request) {
	var body ir.Widget
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeBadRequest(w, r, err)
		return
	}
	body.Name = r.PathValue("name")

	widget, err := a.inventory.UpdateWidget(r.Context(), body)
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeWidgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "widget": widget})
}

func (a *API) deleteWidget(w http.ResponseWriter, r *http.Request) {
	if err := a.inventory.DeleteWidget(r.Context(), r.PathValue("name")); err != nil {
		a.writeError(w, r, err, engine.ErrCodeWidgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) createGadget(w http.ResponseWriter, r *http.Request) {
	var body ir.Gadget
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeBadRequest(w, r, err)
		return
	}
	gadget, err := a.inventory.CreateGadget(r.Context(), body)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "gadget": gadget})
}

func (a *API) listGadgets(w http.ResponseWriter, r *http.Request) {
	gadgets, err := a.inventory.ListGadgets(r.Context())
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "gadgets": gadgets})
}

func (a *API) getGadget(w http.ResponseWriter, r *http.Request) {
	gadget, err := a.inventory.GetGadget(r.Context(), r.PathValue("name"))
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeGadgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "gadget": gadget})
}

func (a *API) updateGadget(w http.ResponseWriter, r *http.Request) {
	var body ir.Gadget
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeBadRequest(w, r, err)
		return
	}
	body.Name = r.PathValue("name")

	// A missing referenced widget stays a 409; only the gadget itself is a 404.
	gadget, err := a.inventory.UpdateGadget(r.Context(), body)
	if err != nil {
		a.writeError(w, r, err, engine.ErrCodeGadgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "gadget": gadget})
}

func (a *API) deleteGadget(w http.ResponseWriter, r *http.Request) {
	if err := a.inventory.DeleteGadget(r.Context(), r.PathValue("name")); err != nil {
		a.writeError(w, r, err, engine.ErrCodeGadgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
