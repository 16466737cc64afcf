package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// AttendanceHandler exposes attendance marking and query endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Mark godoc
// @Summary Record an attendance entry for a student in a section
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param sectionId query string false "Filter by section"
// @Param studentId query string false "Filter by student"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter
	filter.SectionID = c.Query("sectionId")
	filter.StudentID = c.Query("studentId")
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD"))
			return
		}
		filter.Date = &date
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}
