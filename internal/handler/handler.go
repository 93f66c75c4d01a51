package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"qrattend/internal/apperr"
	"qrattend/internal/attendance"
	"qrattend/internal/auth"
	"qrattend/internal/qr"
)

// AdminAuth configures the admin token endpoint.
type AdminAuth struct {
	PasswordHash string
	Issuer       string
	SigningKey   string
	TTL          time.Duration
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	svc    *attendance.Service
	admin  AdminAuth
	checks map[string]HealthCheck
}

func New(svc *attendance.Service, admin AdminAuth, checks map[string]HealthCheck) *Handler {
	return &Handler{svc: svc, admin: admin, checks: checks}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.checks {
		healthy := check(ctx) == nil
		deps[name] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "deps": deps})
}

// ---------- Register ----------

type registerRequest struct {
	RollNo string `json:"roll_no" form:"roll_no"`
	Name   string `json:"name" form:"name"`
}

// Register creates a student and returns its QR code inline.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, "register", apperr.Validation("INVALID_BODY", "request body must contain roll_no and name"))
		return
	}

	reg, err := h.svc.Register(c.Request.Context(), req.RollNo, req.Name)
	if err != nil {
		fail(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"roll_no":     reg.Student.RollNo,
		"name":        reg.Student.Name,
		"qr_code":     qr.Base64(reg.PNG),
		"qr_data_uri": qr.DataURI(reg.PNG),
		"message":     "Student " + reg.Student.Name + " registered",
	})
}

// ---------- Scan ----------

type scanRequest struct {
	RollNo      string `json:"roll_no" form:"roll_no"`
	SubjectCode string `json:"subject_code" form:"subject_code"`
}

// Scan marks attendance for a decoded roll number and a subject.
func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, "scan", apperr.Validation("INVALID_BODY", "request body must contain roll_no and subject_code"))
		return
	}

	res, err := h.svc.Scan(c.Request.Context(), req.RollNo, req.SubjectCode)
	if err != nil {
		fail(c, "scan", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"student": gin.H{
			"roll_no":      res.Student.RollNo,
			"name":         res.Student.Name,
			"subject_code": res.Subject.Code,
			"subject_name": res.Subject.Name,
			"status":       res.Record.Status,
			"date":         res.Record.Date,
			"scanned_at":   res.Record.ScannedAt,
		},
		"message": "Attendance marked for " + res.Student.Name,
	})
}

// ---------- Read endpoints ----------

func (h *Handler) Subjects(c *gin.Context) {
	subjects, err := h.svc.Subjects(c.Request.Context())
	if err != nil {
		fail(c, "subjects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subjects": subjects})
}

// StudentQR serves the PNG of a registered student, re-derived from the roll number.
func (h *Handler) StudentQR(c *gin.Context) {
	png, err := h.svc.RenderQR(c.Request.Context(), c.Param("roll_no"))
	if err != nil {
		fail(c, "student_qr", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// ---------- Admin ----------

type tokenRequest struct {
	Password string `json:"password" form:"password" binding:"required"`
}

// AdminToken exchanges the admin password for a short-lived bearer token.
func (h *Handler) AdminToken(c *gin.Context) {
	if h.admin.PasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "admin access not configured", "code": "ADMIN_DISABLED"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, "admin_token", apperr.Validation("MISSING_PASSWORD", "password is required"))
		return
	}
	if !auth.CheckPassword(h.admin.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials", "code": "UNAUTHORIZED"})
		return
	}
	tok, err := auth.Issue("admin", auth.RoleAdmin, h.admin.Issuer, h.admin.SigningKey, h.admin.TTL)
	if err != nil {
		fail(c, "admin_token", apperr.Internal(err, "issue token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "access_token": tok.Value, "expires_at": tok.ExpiresAt.Unix()})
}

// Data dumps students, subjects and attendance.
func (h *Handler) Data(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		fail(c, "data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

// Clear deletes all students and attendance.
func (h *Handler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		fail(c, "clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All data cleared successfully"})
}

// RebuildArtifacts queues render jobs; ?all=true includes students whose file exists.
func (h *Handler) RebuildArtifacts(c *gin.Context) {
	onlyMissing := c.Query("all") != "true"
	n, err := h.svc.EnqueueArtifactRebuild(c.Request.Context(), onlyMissing)
	if err != nil {
		fail(c, "rebuild_artifacts", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "queued": n})
}
