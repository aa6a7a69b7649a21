package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bantay-barangay/backend/internal/models"
	"github.com/bantay-barangay/backend/internal/services"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

type SubmitReportRequest struct {
	Description     string   `json:"description" binding:"required"`
	ImageData       string   `json:"imageData" binding:"required"`
	Latitude        *float64 `json:"latitude" binding:"required"`
	Longitude       *float64 `json:"longitude" binding:"required"`
	LocationAddress string   `json:"locationAddress"`
}

type ResolveReportRequest struct {
	ResolutionNotes string `json:"resolutionNotes" binding:"required"`
}

func (rc *ReportController) Submit(c *gin.Context) {
	if c.GetString("user_type") != models.UserTypeResident.String() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Only residents can submit reports"})
		return
	}

	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	reporter := services.Reporter{
		UserID:      c.GetString("user_id"),
		DisplayName: c.GetString("user_name"),
		Email:       c.GetString("user_email"),
	}

	report, err := rc.reports.Submit(c.Request.Context(), reporter, services.SubmitReportInput{
		Description:     req.Description,
		ImageData:       req.ImageData,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		LocationAddress: req.LocationAddress,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit report, please try again"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Report submitted",
		"data":    report,
	})
}

// GetReports serves the official dashboard: every report newest first,
// optionally narrowed to one status, plus the per-status tallies.
func (rc *ReportController) GetReports(c *gin.Context) {
	reports, err := rc.reports.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch reports"})
		return
	}

	counts := services.StatusCounts(reports)
	if status := c.Query("status"); status != "" {
		reports = services.FilterByStatus(reports, models.ParseStatusOrDefault(status))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reports,
		"counts":  counts,
	})
}

// GetMyReports serves the resident history view.
func (rc *ReportController) GetMyReports(c *gin.Context) {
	reports, err := rc.reports.ListByReporter(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch reports"})
		return
	}

	if status := c.Query("status"); status != "" {
		reports = services.FilterByStatus(reports, models.ParseStatusOrDefault(status))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reports,
	})
}

func (rc *ReportController) GetReport(c *gin.Context) {
	report, err := rc.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch report"})
		return
	}

	// Residents only see their own reports.
	if c.GetString("user_type") != models.UserTypeOfficial.String() && report.ReportedBy != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not your report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

func (rc *ReportController) MarkInProgress(c *gin.Context) {
	report, err := rc.reports.MarkInProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report marked as In Progress",
		"data":    report,
	})
}

func (rc *ReportController) Resolve(c *gin.Context) {
	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Resolution notes are required"})
		return
	}

	report, err := rc.reports.MarkResolved(c.Request.Context(), c.Param("id"), c.GetString("user_name"), req.ResolutionNotes)
	if err != nil {
		rc.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report marked as Resolved",
		"data":    report,
	})
}

func (rc *ReportController) Reject(c *gin.Context) {
	report, err := rc.reports.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report rejected",
		"data":    report,
	})
}

func (rc *ReportController) transitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Report not found"})
	case errors.Is(err, services.ErrEmptyResolutionNotes):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Resolution notes are required"})
	case errors.Is(err, services.ErrTerminalStatus):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Report is already resolved or rejected"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Transition not allowed from the current status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update report, please try again"})
	}
}
