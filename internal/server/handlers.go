package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/hivedeck-monitor/internal/cache"
	"github.com/ngenohkevin/hivedeck-monitor/internal/process"
	"github.com/ngenohkevin/hivedeck-monitor/internal/system"
)

const (
	version      = "1.0.0"
	hostInfoTTL  = 30 * time.Second
	defaultRole  = "dashboard"
	maxRoleChars = 32
)

// ProcessController is the part of process.Manager the handlers use
type ProcessController interface {
	List(ctx context.Context) (process.Snapshot, error)
	Get(ctx context.Context, pid int32) (process.Record, error)
	Apply(ctx context.Context, pid int32, action process.Action) error
}

// HostInfoFunc describes the host the agent runs on
type HostInfoFunc func(ctx context.Context) (*system.HostInfo, error)

// Handlers holds all HTTP handlers
type Handlers struct {
	processes ProcessController
	hostInfo  HostInfoFunc
	hostCache *cache.Cache[*system.HostInfo]
	auth      *AuthService
	tokenTTL  time.Duration
}

// NewHandlers creates handlers over the given process controller
func NewHandlers(processes ProcessController, hostInfo HostInfoFunc, auth *AuthService, tokenTTL time.Duration) *Handlers {
	if hostInfo == nil {
		hostInfo = system.GetHostInfo
	}
	return &Handlers{
		processes: processes,
		hostInfo:  hostInfo,
		hostCache: cache.New[*system.HostInfo](hostInfoTTL),
		auth:      auth,
		tokenTTL:  tokenTTL,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   version,
	})
}

// GetInfo handles GET /info. ?refresh=true drops the cached copy first.
func (h *Handlers) GetInfo(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		h.hostCache.Delete(cache.KeyHostInfo)
	}
	info, err := h.hostCache.GetOrSet(cache.KeyHostInfo, func() (*system.HostInfo, error) {
		return h.hostInfo(c.Request.Context())
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListProcesses handles GET /processes
func (h *Handlers) ListProcesses(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	snap, err := h.processes.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap.Records())
}

// GetProcess handles GET /processes/:pid
func (h *Handlers) GetProcess(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	pid, ok := pidParam(c)
	if !ok {
		return
	}

	rec, err := h.processes.Get(c.Request.Context(), pid)
	if err != nil {
		switch {
		case errors.Is(err, process.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Process with PID %d not found", pid)})
		case errors.Is(err, process.ErrPermission):
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Permission denied to read process %d", pid)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, rec)
}

// KillProcess handles POST /processes/:pid/kill
func (h *Handlers) KillProcess(c *gin.Context) {
	h.apply(c, process.ActionTerminate)
}

// SuspendProcess handles POST /processes/:pid/suspend
func (h *Handlers) SuspendProcess(c *gin.Context) {
	h.apply(c, process.ActionSuspend)
}

// ResumeProcess handles POST /processes/:pid/resume
func (h *Handlers) ResumeProcess(c *gin.Context) {
	h.apply(c, process.ActionResume)
}

// pidParam parses :pid, answering 400 when it is not a positive int32
func pidParam(c *gin.Context) (int32, bool) {
	pid, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil || pid <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pid"})
		return 0, false
	}
	return int32(pid), true
}

func (h *Handlers) apply(c *gin.Context, action process.Action) {
	pid, ok := pidParam(c)
	if !ok {
		return
	}

	if err := h.processes.Apply(c.Request.Context(), pid, action); err != nil {
		status, msg := actionFailure(pid, action, err)
		log.Printf("Process %d %s failed: %v (request %s)", pid, action, err, c.GetString(requestIDKey))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	log.Printf("Process %d %s (request %s)", pid, pastTense(action), c.GetString(requestIDKey))
	c.JSON(http.StatusOK, process.ActionResponse{
		PID:     pid,
		Action:  action,
		Message: fmt.Sprintf("Process %d %s successfully", pid, pastTense(action)),
	})
}

// actionFailure maps a process error onto a status and message
func actionFailure(pid int32, action process.Action, err error) (int, string) {
	switch {
	case errors.Is(err, process.ErrInvalidPID):
		return http.StatusBadRequest, "invalid pid"
	case errors.Is(err, process.ErrNotFound):
		return http.StatusNotFound, fmt.Sprintf("Process with PID %d not found", pid)
	case errors.Is(err, process.ErrProtected):
		return http.StatusForbidden, fmt.Sprintf("Process %d is protected", pid)
	case errors.Is(err, process.ErrPermission):
		return http.StatusForbidden, fmt.Sprintf("Permission denied to %s process %d", action.Endpoint(), pid)
	}
	return http.StatusInternalServerError, err.Error()
}

func pastTense(action process.Action) string {
	switch action {
	case process.ActionTerminate:
		return "killed"
	case process.ActionSuspend:
		return "suspended"
	case process.ActionResume:
		return "resumed"
	}
	return string(action)
}

type tokenRequest struct {
	Role string `json:"role"`
}

// IssueToken handles POST /auth/token
func (h *Handlers) IssueToken(c *gin.Context) {
	var req tokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.Role == "" {
		req.Role = defaultRole
	}
	if len(req.Role) > maxRoleChars {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role too long"})
		return
	}

	token, expires, err := h.auth.GenerateToken(req.Role, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires.UTC(),
	})
}

// Close cleans up handlers resources
func (h *Handlers) Close() error {
	h.hostCache.Close()
	return nil
}
