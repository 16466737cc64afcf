package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// SectionHandler exposes section scheduling, roster and export endpoints.
type SectionHandler struct {
	sections    *service.SectionService
	enrollments *service.EnrollmentService
	exports     *service.ExportService
}

// NewSectionHandler constructs SectionHandler.
func NewSectionHandler(sections *service.SectionService, enrollments *service.EnrollmentService, exports *service.ExportService) *SectionHandler {
	return &SectionHandler{sections: sections, enrollments: enrollments, exports: exports}
}

// List godoc
// @Summary List sections with teacher and subject detail
// @Tags Sections
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sections [get]
func (h *SectionHandler) List(c *gin.Context) {
	sections, err := h.sections.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Create godoc
// @Summary Create section
// @Tags Sections
// @Accept json
// @Produce json
// @Param payload body service.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /sections [post]
func (h *SectionHandler) Create(c *gin.Context) {
	var req service.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	section, err := h.sections.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Delete godoc
// @Summary Delete section including its enrollments and attendance
// @Tags Sections
// @Param id path string true "Section ID"
// @Success 204
// @Security BearerAuth
// @Router /sections/{id} [delete]
func (h *SectionHandler) Delete(c *gin.Context) {
	if err := h.sections.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Roster godoc
// @Summary List students enrolled in a section
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /sections/{id}/roster [get]
func (h *SectionHandler) Roster(c *gin.Context) {
	roster, err := h.enrollments.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Export godoc
// @Summary Export a section attendance report
// @Tags Sections
// @Produce octet-stream
// @Param id path string true "Section ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /sections/{id}/export [get]
func (h *SectionHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	result, err := h.exports.SectionReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
