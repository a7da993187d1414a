package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	_ "TodoAPI/docs"
	"TodoAPI/internal/config"
	"TodoAPI/internal/logging"
	"TodoAPI/internal/repo"
	"TodoAPI/internal/testutil"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		App:  config.AppConfig{Env: "test", Version: "test-1"},
		HTTP: config.HTTPConfig{AllowOrigins: []string{"*"}},
	}
}

func newTestApp(t *testing.T) (*App, repo.Store) {
	t.Helper()
	store := testutil.NewSQLiteStore(t)
	return NewWithStore(testConfig(), store, logging.Discard()), store
}

func do(t *testing.T, a *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

type errorEnvelope struct {
	Error struct {
		StatusCode int            `json:"statusCode"`
		Name       string         `json:"name"`
		Message    string         `json:"message"`
		Code       string         `json:"code"`
		Details    map[string]any `json:"details"`
	} `json:"error"`
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorEnvelope {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	env := decode[errorEnvelope](t, w)
	if env.Error.Code != code || env.Error.StatusCode != status {
		t.Fatalf("envelope = %+v, want code %s", env.Error, code)
	}
	return env
}

type itemJSON struct {
	ID          int64   `json:"id"`
	TodoID      int64   `json:"todoId"`
	Content     string  `json:"content"`
	IsCompleted bool    `json:"isCompleted"`
	CompletedAt *string `json:"completedAt"`
}

type todoJSON struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Subtitle  *string    `json:"subtitle"`
	Status    string     `json:"status"`
	DeletedAt *string    `json:"deletedAt"`
	Items     []itemJSON `json:"items"`
}

type createJSON struct {
	Todo  todoJSON   `json:"todo"`
	Items []itemJSON `json:"items"`
}

func createTodo(t *testing.T, a *App, body string) createJSON {
	t.Helper()
	w := do(t, a, http.MethodPost, "/api/v1/todos", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	return decode[createJSON](t, w)
}

func TestCreateAndFetchTodo(t *testing.T) {
	a, _ := newTestApp(t)

	created := createTodo(t, a, `{"todo":{"title":"Groceries","subtitle":"weekly"},"items":[{"content":"milk"},{"content":"bread","isCompleted":true}]}`)
	if created.Todo.ID == 0 || created.Todo.Status != "ACTIVE" || created.Todo.Title != "Groceries" {
		t.Fatalf("todo = %+v", created.Todo)
	}
	if len(created.Items) != 2 {
		t.Fatalf("items = %+v", created.Items)
	}
	if created.Items[0].CompletedAt != nil || created.Items[1].CompletedAt == nil || !created.Items[1].IsCompleted {
		t.Fatalf("completion fields = %+v", created.Items)
	}

	w := do(t, a, http.MethodGet, "/api/v1/todos/"+strconv.FormatInt(created.Todo.ID, 10), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
	got := decode[todoJSON](t, w)
	if len(got.Items) != 2 || got.Items[0].TodoID != created.Todo.ID || got.DeletedAt != nil {
		t.Fatalf("get = %+v", got)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	a, _ := newTestApp(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing todo", `{"items":[]}`, "todo"},
		{"empty title", `{"todo":{"title":""}}`, "title"},
		{"bad status", `{"todo":{"title":"x","status":"DONE"}}`, "status"},
		{"empty item", `{"todo":{"title":"x"},"items":[{"content":""}]}`, "content"},
		{"wrong type", `{"todo":{"title":5}}`, "todo.title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := wantError(t, do(t, a, http.MethodPost, "/api/v1/todos", tt.body), http.StatusBadRequest, "VALIDATION_ERROR")
			if env.Error.Details["field"] != tt.wantField {
				t.Errorf("field = %v, want %s", env.Error.Details["field"], tt.wantField)
			}
			if env.Error.Name != "ValidationError" {
				t.Errorf("name = %s", env.Error.Name)
			}
		})
	}

	wantError(t, do(t, a, http.MethodPost, "/api/v1/todos", `{"todo":`), http.StatusBadRequest, "VALIDATION_ERROR")

	w := do(t, a, http.MethodGet, "/api/v1/todos", "")
	if w.Header().Get("X-Total-Count") != "0" {
		t.Fatalf("rejected creates were persisted: total = %s", w.Header().Get("X-Total-Count"))
	}
}

func TestListTodosFiltersAndPages(t *testing.T) {
	a, _ := newTestApp(t)
	for i := 0; i < 5; i++ {
		status := "ACTIVE"
		if i%2 == 1 {
			status = "INACTIVE"
		}
		createTodo(t, a, `{"todo":{"title":"t`+strconv.Itoa(i)+`","status":"`+status+`"},"items":[{"content":"x"}]}`)
	}

	w := do(t, a, http.MethodGet, "/api/v1/todos?status=INACTIVE", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	list := decode[[]todoJSON](t, w)
	if len(list) != 2 || w.Header().Get("X-Total-Count") != "2" {
		t.Fatalf("inactive list = %+v total %s", list, w.Header().Get("X-Total-Count"))
	}
	for _, td := range list {
		if td.Status != "INACTIVE" || len(td.Items) != 1 {
			t.Fatalf("todo = %+v", td)
		}
	}

	w = do(t, a, http.MethodGet, "/api/v1/todos?page=2&limit=2", "")
	page := decode[[]todoJSON](t, w)
	if len(page) != 2 || page[0].Title != "t2" || w.Header().Get("X-Total-Count") != "5" {
		t.Fatalf("page 2 = %+v", page)
	}

	env := wantError(t, do(t, a, http.MethodGet, "/api/v1/todos?page=9&limit=2", ""), http.StatusNotFound, "NOT_FOUND")
	if env.Error.Details["page"] != float64(9) {
		t.Errorf("details = %v", env.Error.Details)
	}
	env = wantError(t, do(t, a, http.MethodGet, "/api/v1/todos?page=1000000000000000000", ""), http.StatusNotFound, "NOT_FOUND")
	if env.Error.Details["page"] != float64(1e18) {
		t.Errorf("huge page details = %v", env.Error.Details)
	}

	for _, q := range []string{"limit=0", "limit=101", "page=0", "page=abc", "status=active"} {
		wantError(t, do(t, a, http.MethodGet, "/api/v1/todos?"+q, ""), http.StatusBadRequest, "VALIDATION_ERROR")
	}
}

func TestUpdateAndSoftDeleteTodo(t *testing.T) {
	a, _ := newTestApp(t)
	created := createTodo(t, a, `{"todo":{"title":"Plan"},"items":[{"content":"step"}]}`)
	path := "/api/v1/todos/" + strconv.FormatInt(created.Todo.ID, 10)

	w := do(t, a, http.MethodPatch, path, `{"status":"INACTIVE"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	upd := decode[todoJSON](t, w)
	if upd.Status != "INACTIVE" || upd.Title != "Plan" || len(upd.Items) != 1 {
		t.Fatalf("patched = %+v", upd)
	}
	wantError(t, do(t, a, http.MethodPatch, path, `{"title":"  "}`), http.StatusBadRequest, "VALIDATION_ERROR")

	if w := do(t, a, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	env := wantError(t, do(t, a, http.MethodGet, path, ""), http.StatusNotFound, "NOT_FOUND")
	if env.Error.Details["id"] != float64(created.Todo.ID) || env.Error.Name != "NotFoundError" {
		t.Errorf("envelope = %+v", env.Error)
	}
	wantError(t, do(t, a, http.MethodDelete, path, ""), http.StatusNotFound, "NOT_FOUND")
	wantError(t, do(t, a, http.MethodPatch, path, `{"title":"again"}`), http.StatusNotFound, "NOT_FOUND")

	w = do(t, a, http.MethodGet, "/api/v1/todos", "")
	if list := decode[[]todoJSON](t, w); len(list) != 0 {
		t.Fatalf("soft-deleted todo listed: %+v", list)
	}

	// the item survives its parent's soft delete
	itemPath := "/api/v1/items/" + strconv.FormatInt(created.Items[0].ID, 10)
	if w := do(t, a, http.MethodGet, itemPath, ""); w.Code != http.StatusOK {
		t.Fatalf("item after soft delete: %d", w.Code)
	}
	wantError(t, do(t, a, http.MethodGet, path+"/items", ""), http.StatusNotFound, "NOT_FOUND")
	wantError(t, do(t, a, http.MethodPost, path+"/items", `{"content":"late"}`), http.StatusNotFound, "NOT_FOUND")
}

func TestInvalidIDs(t *testing.T) {
	a, _ := newTestApp(t)
	for _, p := range []string{"/api/v1/todos/abc", "/api/v1/todos/0", "/api/v1/items/-3", "/api/v1/todos/x/items"} {
		env := wantError(t, do(t, a, http.MethodGet, p, ""), http.StatusBadRequest, "VALIDATION_ERROR")
		if env.Error.Details["field"] != "id" {
			t.Errorf("%s details = %v", p, env.Error.Details)
		}
	}
}

func TestItemLifecycle(t *testing.T) {
	a, _ := newTestApp(t)
	created := createTodo(t, a, `{"todo":{"title":"Parent"}}`)
	base := "/api/v1/todos/" + strconv.FormatInt(created.Todo.ID, 10) + "/items"

	w := do(t, a, http.MethodPost, base, `{"content":"write tests"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: %d %s", w.Code, w.Body.String())
	}
	it := decode[itemJSON](t, w)
	if it.TodoID != created.Todo.ID || it.IsCompleted || it.CompletedAt != nil {
		t.Fatalf("item = %+v", it)
	}
	itemPath := "/api/v1/items/" + strconv.FormatInt(it.ID, 10)

	if w := do(t, a, http.MethodPatch, itemPath+"/completion", `{"isCompleted":true}`); w.Code != http.StatusNoContent {
		t.Fatalf("complete: %d %s", w.Code, w.Body.String())
	}
	got := decode[itemJSON](t, do(t, a, http.MethodGet, itemPath, ""))
	if !got.IsCompleted || got.CompletedAt == nil {
		t.Fatalf("after complete = %+v", got)
	}

	w = do(t, a, http.MethodGet, base+"?isCompleted=true", "")
	if list := decode[[]itemJSON](t, w); len(list) != 1 {
		t.Fatalf("completed filter = %+v", list)
	}
	w = do(t, a, http.MethodGet, base+"?isCompleted=false", "")
	if list := decode[[]itemJSON](t, w); len(list) != 0 {
		t.Fatalf("open filter = %+v", list)
	}

	w = do(t, a, http.MethodPatch, itemPath, `{"content":"write more tests"}`)
	got = decode[itemJSON](t, w)
	if got.Content != "write more tests" || !got.IsCompleted || got.CompletedAt == nil {
		t.Fatalf("content patch = %+v", got)
	}
	w = do(t, a, http.MethodPatch, itemPath, `{"isCompleted":false}`)
	got = decode[itemJSON](t, w)
	if got.IsCompleted || got.CompletedAt != nil {
		t.Fatalf("uncomplete patch = %+v", got)
	}

	env := wantError(t, do(t, a, http.MethodPatch, itemPath+"/completion", `{}`), http.StatusBadRequest, "VALIDATION_ERROR")
	if env.Error.Details["field"] != "isCompleted" {
		t.Errorf("details = %v", env.Error.Details)
	}
	wantError(t, do(t, a, http.MethodPatch, "/api/v1/items/999/completion", `{"isCompleted":true}`), http.StatusNotFound, "NOT_FOUND")
	wantError(t, do(t, a, http.MethodPost, base, `{"content":" "}`), http.StatusBadRequest, "VALIDATION_ERROR")
	wantError(t, do(t, a, http.MethodPost, "/api/v1/todos/999/items", `{"content":"x"}`), http.StatusNotFound, "NOT_FOUND")

	if w := do(t, a, http.MethodDelete, itemPath, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete item: %d", w.Code)
	}
	wantError(t, do(t, a, http.MethodGet, itemPath, ""), http.StatusNotFound, "NOT_FOUND")
	wantError(t, do(t, a, http.MethodDelete, itemPath, ""), http.StatusNotFound, "NOT_FOUND")
}

func TestBulkCompletion(t *testing.T) {
	a, _ := newTestApp(t)
	created := createTodo(t, a, `{"todo":{"title":"Bulk"},"items":[{"content":"a"},{"content":"b"}]}`)
	ids := []int64{created.Items[0].ID, created.Items[1].ID}

	body, _ := json.Marshal(map[string]any{"ids": []int64{ids[0], ids[1], ids[0]}, "isCompleted": true})
	if w := do(t, a, http.MethodPatch, "/api/v1/items/bulk-completion", string(body)); w.Code != http.StatusNoContent {
		t.Fatalf("bulk: %d %s", w.Code, w.Body.String())
	}
	w := do(t, a, http.MethodGet, "/api/v1/todos/"+strconv.FormatInt(created.Todo.ID, 10), "")
	td := decode[todoJSON](t, w)
	for _, it := range td.Items {
		if !it.IsCompleted || it.CompletedAt == nil {
			t.Fatalf("item not completed: %+v", it)
		}
	}
	if *td.Items[0].CompletedAt != *td.Items[1].CompletedAt {
		t.Errorf("bulk stamps differ: %s vs %s", *td.Items[0].CompletedAt, *td.Items[1].CompletedAt)
	}

	body, _ = json.Marshal(map[string]any{"ids": []int64{ids[0], 404}, "isCompleted": false})
	env := wantError(t, do(t, a, http.MethodPatch, "/api/v1/items/bulk-completion", string(body)), http.StatusBadRequest, "VALIDATION_ERROR")
	missing, _ := env.Error.Details["missing"].([]any)
	if len(missing) != 1 || missing[0] != float64(404) {
		t.Fatalf("missing = %v", env.Error.Details["missing"])
	}

	for _, b := range []string{`{"ids":[],"isCompleted":true}`, `{"ids":[1]}`, `{"ids":[0],"isCompleted":true}`} {
		wantError(t, do(t, a, http.MethodPatch, "/api/v1/items/bulk-completion", b), http.StatusBadRequest, "VALIDATION_ERROR")
	}

	many := make([]int64, 40000)
	for i := range many {
		many[i] = int64(i + 1)
	}
	body, _ = json.Marshal(map[string]any{"ids": many, "isCompleted": true})
	env = wantError(t, do(t, a, http.MethodPatch, "/api/v1/items/bulk-completion", string(body)), http.StatusBadRequest, "VALIDATION_ERROR")
	if env.Error.Details["field"] != "ids" || env.Error.Details["rule"] != "max" {
		t.Errorf("too many ids: details = %v", env.Error.Details)
	}
}

func TestOperationalRoutes(t *testing.T) {
	a, _ := newTestApp(t)

	for _, p := range []string{"/", "/health", "/ready", "/version", "/swagger-doc.json"} {
		w := do(t, a, http.MethodGet, p, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: %d %s", p, w.Code, w.Body.String())
		}
	}

	w := do(t, a, http.MethodGet, "/ping?msg=hi", "")
	ping := decode[map[string]any](t, w)
	if ping["greeting"] != "hi" || ping["url"] != "/ping?msg=hi" {
		t.Errorf("ping = %v", ping)
	}

	doc := decode[map[string]any](t, do(t, a, http.MethodGet, "/swagger-doc.json", ""))
	if doc["basePath"] != "/api/v1" {
		t.Errorf("swagger basePath = %v", doc["basePath"])
	}
}

func TestReadyReportsDatabaseDown(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	w := do(t, a, http.MethodGet, "/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with closed store: %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	a, _ := newTestApp(t)

	w := do(t, a, http.MethodGet, "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("no request id generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("request id = %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	a, _ := newTestApp(t)
	a.Router().GET("/boom", func(*gin.Context) { panic("kaboom") })

	env := wantError(t, do(t, a, http.MethodGet, "/boom", ""), http.StatusInternalServerError, "INTERNAL_ERROR")
	if strings.Contains(env.Error.Message, "kaboom") {
		t.Errorf("panic value leaked: %s", env.Error.Message)
	}
}

func TestRequestLoggerWritesServerErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "logfmt"})
	a := NewWithStore(testConfig(), testutil.NewSQLiteStore(t), logger)
	a.Router().GET("/boom", func(*gin.Context) { panic("kaboom") })

	do(t, a, http.MethodGet, "/boom", "")
	out := buf.String()
	if !strings.Contains(out, "request failed") || !strings.Contains(out, "kaboom") || !strings.Contains(out, "status=500") ||
		!strings.Contains(out, "code=INTERNAL_ERROR") {
		t.Fatalf("log output = %s", out)
	}
}

func TestRequestLoggerTagsRejections(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "logfmt"})
	a := NewWithStore(testConfig(), testutil.NewSQLiteStore(t), logger)

	do(t, a, http.MethodGet, "/api/v1/todos/999", "")
	out := buf.String()
	if !strings.Contains(out, "request rejected") || !strings.Contains(out, "code=NOT_FOUND") || !strings.Contains(out, "status=404") {
		t.Fatalf("log output = %s", out)
	}
}
