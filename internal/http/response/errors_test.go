package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
)

func TestRespondAPIErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not_found", err: fmt.Errorf("task: %w", apperrors.ErrNotFound), status: http.StatusNotFound, code: "not_found"},
		{name: "invalid", err: apperrors.ErrInvalidArgument, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "fallback", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, code: "list_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err, "list_failed")
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message == "" {
				t.Fatalf("envelope %+v", env)
			}
		})
	}
}
