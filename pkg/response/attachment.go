package response

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/seminary-calendar/pkg/export"
)

// ResponseSink streams an export to the HTTP client as a download.
type ResponseSink struct {
	c *gin.Context
}

// NewResponseSink binds a sink to the current request.
func NewResponseSink(c *gin.Context) *ResponseSink {
	return &ResponseSink{c: c}
}

// Deliver writes the file as an attachment. Nothing is written once the
// request context is done.
func (s *ResponseSink) Deliver(ctx context.Context, file export.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.c.Header("Cache-Control", "no-store")
	s.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	s.c.Data(http.StatusOK, file.ContentType, file.Data)
	return file.Name, nil
}
