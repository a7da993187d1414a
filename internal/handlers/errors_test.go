package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TodoAPI/internal/apperr"
	"TodoAPI/internal/dto"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseRequestFieldNames()
}

func render(err error) (int, dto.ErrorBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, err)
	var env dto.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env.Error
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		errName string
		message string
	}{
		{"validation", apperr.Validation("title is required", nil), 400, "VALIDATION_ERROR", "ValidationError", "title is required"},
		{"not found", apperr.NotFound("todo not found", map[string]any{"id": 1}), 404, "NOT_FOUND", "NotFoundError", "todo not found"},
		{"storage", apperr.Storage("list todos failed", errors.New("conn reset")), 500, "DATABASE_ERROR", "StorageError", "list todos failed"},
		{"untyped", errors.New("secret detail"), 500, "INTERNAL_ERROR", "InternalError", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(tt.err)
			if status != tt.status || body.StatusCode != tt.status {
				t.Errorf("status = %d/%d, want %d", status, body.StatusCode, tt.status)
			}
			if body.Code != tt.code || body.Name != tt.errName || body.Message != tt.message {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestBindErrorUsesJSONNames(t *testing.T) {
	type req struct {
		IDs         []int64 `json:"ids" binding:"required,min=1,max=3,dive,gt=0"`
		IsCompleted *bool   `json:"isCompleted" binding:"required"`
	}
	tests := []struct {
		body  string
		field string
		rule  string
	}{
		{`{"ids":[1]}`, "isCompleted", "required"},
		{`{"ids":[],"isCompleted":true}`, "ids", "min"},
		{`{"ids":[3,0],"isCompleted":true}`, "ids[1]", "gt"},
		{`{"ids":[1,2,3,4],"isCompleted":true}`, "ids", "max"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		c.Request.Header.Set("Content-Type", "application/json")

		var r req
		err := c.ShouldBindJSON(&r)
		if err == nil {
			t.Fatalf("%s: bind succeeded", tt.body)
		}
		ae, ok := apperr.As(bindError(err))
		if !ok || ae.Kind != apperr.KindValidation {
			t.Fatalf("%s: %v", tt.body, err)
		}
		if ae.Details["field"] != tt.field || ae.Details["rule"] != tt.rule {
			t.Errorf("%s: details = %v, want %s/%s", tt.body, ae.Details, tt.field, tt.rule)
		}
	}
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1", "1.5"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		if _, ok := parseID(c, "id"); ok {
			t.Errorf("parseID(%q) accepted", raw)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("parseID(%q) status = %d", raw, w.Code)
		}
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	if id, ok := parseID(c, "id"); !ok || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, ok)
	}
}
