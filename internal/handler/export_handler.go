package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/seminary-calendar/internal/dto"
	"github.com/noah-isme/seminary-calendar/internal/service"
	"github.com/noah-isme/seminary-calendar/pkg/export"
	"github.com/noah-isme/seminary-calendar/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req dto.ExportRequest, sink export.Sink) (*service.ExportResult, error)
}

// ExportHandler streams calendar exports as downloads.
type ExportHandler struct {
	service exportService
	logger  *zap.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{service: service, logger: logger}
}

// Export godoc
// @Summary Export events
// @Description Exports every event matching the filters as a file download.
// @Tags Calendar
// @Produce text/csv,application/vnd.ms-excel,text/calendar,application/pdf
// @Param format path string true "csv, excel, ics or pdf"
// @Param category query int false "Category ID"
// @Param academic_year query int false "Academic year ID"
// @Param search query string false "Free text search"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /calendar/export/{format} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	req := dto.ExportRequest{
		Format:  strings.ToLower(c.Param("format")),
		Filters: service.FiltersFromQuery(c.Request.URL.Query()),
	}
	_, err := h.service.Export(ctx, req, response.NewResponseSink(c))
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		h.logger.Info("export abandoned by client", zap.String("format", req.Format))
		c.Abort()
		return
	}
	_ = c.Error(err)
	response.Error(c, err)
}
