package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepilot-backend/internal/platform/apierr"
)

// RespondAPIError maps a service error to its status and code. fallbackCode is
// used when nothing more specific matches.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	ae := apierr.From(err, fallbackCode)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, fallbackCode, nil)
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

// AbortAPIError is RespondAPIError for middleware.
func AbortAPIError(c *gin.Context, err error, fallbackCode string) {
	RespondAPIError(c, err, fallbackCode)
	c.Abort()
}
