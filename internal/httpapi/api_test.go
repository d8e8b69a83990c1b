package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gizmo/internal/engine"
	"github.com/roach88/gizmo/internal/ir"
	"github.com/roach88/gizmo/internal/resolver"
	"github.com/roach88/gizmo/internal/store"
	"github.com/roach88/gizmo/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestAPI(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "rocket", Parts: []string{"spoke", "wheel"}}))
	require.NoError(t, s.PutWidget(ctx, ir.Widget{Name: "spring", Parts: []string{"hub", "wheel"}}))
	require.NoError(t, s.PutGadget(ctx, ir.Gadget{Name: "tailx", Widgets: []string{"rocket"}, Functions: []string{"sig"}}))
	require.NoError(t, s.PutGadget(ctx, ir.Gadget{Name: "devel", Widgets: []string{"spring"}, Functions: []string{"hash"}}))

	logger := discardLogger()
	e := engine.New(resolver.New(s, s), s,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithTokenGenerator(testutil.NewSequenceTokenGenerator("")),
		engine.WithLogger(logger),
	)
	api := New(e, engine.NewInventory(s, logger), s, logger)
	return api.Handler(), s
}

type response struct {
	Success   bool              `json:"success"`
	Function  ir.FunctionResult `json:"function"`
	Functions []ir.FunctionResult
	Widget    ir.Widget
	Widgets   []ir.Widget
	Gadget    ir.Gadget
	Gadgets   []ir.Gadget
	Replay    engine.ReplayResult
	Error     errorDetail `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, response) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestExecuteFunction_Sig(t *testing.T) {
	h, _ := setupTestAPI(t)

	code, resp := do(t, h, http.MethodPost, "/api/function", `{"name":"sig","gadget":"tailx"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)
	assert.Equal(t, "{widgets{0rocketfunctions{0signametailx", resp.Function.Output)
	assert.Equal(t, "sig", resp.Function.Name)
	assert.Equal(t, "tailx", resp.Function.Gadget)
	assert.Regexp(t, `^[\w]{8}(-[\w]{4}){3}-[\w]{12}$`, resp.Function.Token)
	assert.NotEmpty(t, resp.Function.ID)
}

func TestExecuteFunction_Hash(t *testing.T) {
	h, _ := setupTestAPI(t)

	code, resp := do(t, h, http.MethodPost, "/api/function", `{"name":"hash","gadget":"devel"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "c57dbcafc0e0882b057066d6c7d5d228badc33bdcc1c3b3c3ea16a07b143e24b", resp.Function.Output)
}

func TestExecuteFunction_Conflicts(t *testing.T) {
	h, s := setupTestAPI(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing name", `{"gadget":"tailx"}`, "INVALID_REQUEST"},
		{"missing gadget", `{"name":"sig"}`, "INVALID_REQUEST"},
		{"unknown gadget", `{"name":"sig","gadget":"nope"}`, "GADGET_NOT_FOUND"},
		{"unsupported function", `{"name":"hash","gadget":"tailx"}`, "UNSUPPORTED_FUNCTION"},
		{"missing function", `{"name":"missing","gadget":"tailx"}`, "UNSUPPORTED_FUNCTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, h, http.MethodPost, "/api/function", tt.body)
			assert.Equal(t, http.StatusConflict, code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}

	n, err := s.CountFunctionResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestExecuteFunction_MalformedBody(t *testing.T) {
	h, _ := setupTestAPI(t)

	for _, body := range []string{"", "{", `{"name":"sig","gadget":"tailx","extra":1}`, `{"name":"sig","gadget":"tailx"}{}`} {
		code, resp := do(t, h, http.MethodPost, "/api/function", body)
		assert.Equal(t, http.StatusBadRequest, code, "body %q", body)
		assert.Equal(t, "MALFORMED_BODY", resp.Error.Code)
	}
}

func TestGetFunction(t *testing.T) {
	h, _ := setupTestAPI(t)

	_, created := do(t, h, http.MethodPost, "/api/function", `{"name":"sig","gadget":"tailx"}`)

	code, resp := do(t, h, http.MethodGet, "/api/function/"+created.Function.Token, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, created.Function.ID, resp.Function.ID)
	assert.Equal(t, created.Function.Output, resp.Function.Output)
	assert.True(t, created.Function.Start.Equal(resp.Function.Start))

	code, resp = do(t, h, http.MethodGet, "/api/function/00000000-0000-4000-8000-999999999999", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "RESULT_NOT_FOUND", resp.Error.Code)
}

func TestFunctionHistory(t *testing.T) {
	h, _ := setupTestAPI(t)

	for i := 0; i < 3; i++ {
		code, _ := do(t, h, http.MethodPost, "/api/function", `{"name":"sig","gadget":"tailx"}`)
		require.Equal(t, http.StatusCreated, code)
	}

	code, resp := do(t, h, http.MethodGet, "/api/gadget/tailx/functions?limit=2", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Functions, 2)

	code, resp = do(t, h, http.MethodGet, "/api/gadget/devel/functions", "")
	assert.Equal(t, http.StatusOK, code)
	assert.NotNil(t, resp.Functions)
	assert.Empty(t, resp.Functions)

	code, _ = do(t, h, http.MethodGet, "/api/gadget/tailx/functions?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWidgetCRUD(t *testing.T) {
	h, _ := setupTestAPI(t)

	code, resp := do(t, h, http.MethodPost, "/api/widget", `{"name":"gear","parts":["tooth","axle"]}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "gear", resp.Widget.Name)

	code, resp = do(t, h, http.MethodPost, "/api/widget", `{"name":"gear","parts":["x"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)

	code, resp = do(t, h, http.MethodPost, "/api/widget", `{"name":"nopart"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)

	code, resp = do(t, h, http.MethodGet, "/api/widget", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Widgets, 3)

	code, resp = do(t, h, http.MethodPut, "/api/widget/gear", `{"parts":["axle"]}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"axle"}, resp.Widget.Parts)

	code, resp = do(t, h, http.MethodGet, "/api/widget/gear", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"axle"}, resp.Widget.Parts)

	code, _ = do(t, h, http.MethodPut, "/api/widget/ghost", `{"parts":["axle"]}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodDelete, "/api/widget/gear", "")
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, http.MethodGet, "/api/widget/gear", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "WIDGET_NOT_FOUND", resp.Error.Code)
}

func TestGadgetCRUD(t *testing.T) {
	h, _ := setupTestAPI(t)

	code, resp := do(t, h, http.MethodPost, "/api/gadget",
		`{"name":"combo","widgets":["rocket","spring"],"functions":["sig","hash","sig"]}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []string{"sig", "hash"}, resp.Gadget.Functions)

	code, resp = do(t, h, http.MethodPost, "/api/gadget", `{"name":"bad","widgets":["ghost"],"functions":["sig"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "WIDGET_NOT_FOUND", resp.Error.Code)

	code, resp = do(t, h, http.MethodPost, "/api/gadget", `{"name":"bad","widgets":["rocket"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)

	code, resp = do(t, h, http.MethodGet, "/api/gadget", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Gadgets, 3)

	// missing referenced widget on update is a conflict, not a 404
	code, resp = do(t, h, http.MethodPut, "/api/gadget/combo", `{"widgets":["ghost"],"functions":["sig"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "WIDGET_NOT_FOUND", resp.Error.Code)

	code, _ = do(t, h, http.MethodPut, "/api/gadget/ghost", `{"widgets":["rocket"],"functions":["sig"]}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPut, "/api/gadget/combo", `{"widgets":["spring"],"functions":["hash"]}`)
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, http.MethodPost, "/api/function", `{"name":"hash","gadget":"combo"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "combo", resp.Function.Gadget)

	code, _ = do(t, h, http.MethodDelete, "/api/gadget/combo", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodDelete, "/api/gadget/combo", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthAndReady(t *testing.T) {
	h, s := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	require.NoError(t, s.Close())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_ready"`)
}

type brokenRecords struct{ engine.RecordStore }

func (brokenRecords) FunctionResultByToken(context.Context, string) (ir.FunctionResult, bool, error) {
	return ir.FunctionResult{}, false, errors.New("db on fire")
}

func TestStoreErrorIs500(t *testing.T) {
	_, s := setupTestAPI(t)
	e := engine.New(resolver.New(s, s), brokenRecords{s}, engine.WithLogger(discardLogger()))
	h := New(e, engine.NewInventory(s, discardLogger()), s, discardLogger()).Handler()

	code, resp := do(t, h, http.MethodGet, "/api/function/00000000-0000-4000-8000-000000000001", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INTERNAL", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "fire")
}

func TestReplayFunction(t *testing.T) {
	h, s := setupTestAPI(t)

	status, created := do(t, h, http.MethodPost, "/api/function", `{"name":"hash","gadget":"devel"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, h, http.MethodGet, "/api/function/"+created.Function.Token+"/replay", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body.Replay.Match)
	assert.Equal(t, created.Function.Output, body.Replay.Recomputed)

	require.NoError(t, s.PutWidget(context.Background(), ir.Widget{Name: "spring", Parts: []string{"wheel", "hub"}}))
	status, body = do(t, h, http.MethodGet, "/api/function/"+created.Function.Token+"/replay", "")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, body.Replay.Match)
	assert.Equal(t, created.Function.Output, body.Replay.Stored.Output)

	status, body = do(t, h, http.MethodGet, "/api/function/unknown/replay", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "RESULT_NOT_FOUND", body.Error.Code)
}
