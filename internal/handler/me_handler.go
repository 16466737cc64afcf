package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// MeHandler exposes the self-scoped student views. The student identity is
// taken from the token claims, never from request parameters.
type MeHandler struct {
	enrollments *service.EnrollmentService
	attendance  *service.AttendanceService
}

// NewMeHandler constructs MeHandler.
func NewMeHandler(enrollments *service.EnrollmentService, attendance *service.AttendanceService) *MeHandler {
	return &MeHandler{enrollments: enrollments, attendance: attendance}
}

func (h *MeHandler) studentID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.StudentID == nil || *claims.StudentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a student"))
		return "", false
	}
	return *claims.StudentID, true
}

// Sections godoc
// @Summary List sections the authenticated student is enrolled in
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me/sections [get]
func (h *MeHandler) Sections(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sections, err := h.enrollments.SectionsForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Attendance godoc
// @Summary List attendance records of the authenticated student
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me/attendance [get]
func (h *MeHandler) Attendance(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	records, err := h.attendance.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
