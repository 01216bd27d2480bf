package api

import (
	"errors"
	"net/http"
	"strconv"

	"solar_registration/internal/domain"
	"solar_registration/internal/editor"
	"solar_registration/internal/mapper"
	"solar_registration/internal/service"
	"solar_registration/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type fieldEdit struct {
	Path  string      `json:"path" binding:"required"`
	Value interface{} `json:"value"`
}

type partEdit struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

type viewRequest struct {
	View  string `json:"view" binding:"required,oneof=main sub"`
	Index *int   `json:"index"`
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		logger.Error("Stats failed: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": stats,
		"runtime": h.svc.WriterStats(),
	})
}

// fieldInfo describes one editable path and the JSON type its value takes
type fieldInfo struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// GetFields handles GET /api/fields
func (h *Handler) GetFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mainClient": describeFields(mapper.MainClientSchema),
		"subClient":  describeFields(mapper.SubClientSchema),
		"partClient": describeFields(mapper.PartClientSchema),
	})
}

func describeFields[R any](s *mapper.Schema[R]) []fieldInfo {
	paths := s.Paths()
	fields := make([]fieldInfo, len(paths))
	for i, p := range paths {
		fields[i] = fieldInfo{Path: p, Type: "string"}
		if s.IsBool(p) {
			fields[i].Type = "boolean"
		}
	}
	return fields
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	id, projection := h.svc.CreateSession(c.GetString(requestIDKey))

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": id,
		"state":     projection,
	})
}

// GetSession handles GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	projection, err := h.svc.Projection(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.svc.DeleteSession(c.GetString(requestIDKey), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Session deleted",
	})
}

// UpdateMain handles PATCH /api/sessions/:id/main
func (h *Handler) UpdateMain(c *gin.Context) {
	var req fieldEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field edit"})
		return
	}

	h.apply(c, "UPDATE_MAIN", func(e *editor.Editor) error {
		return e.UpdateMain(req.Path, req.Value)
	})
}

// AddSubClient handles POST /api/sessions/:id/subclients
func (h *Handler) AddSubClient(c *gin.Context) {
	h.apply(c, "ADD_SUB", (*editor.Editor).AddSubClient)
}

// UpdateSubClient handles PATCH /api/sessions/:id/subclients/:sub
func (h *Handler) UpdateSubClient(c *gin.Context) {
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}
	var req fieldEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field edit"})
		return
	}

	h.apply(c, "UPDATE_SUB", func(e *editor.Editor) error {
		return e.UpdateSubClient(sub, req.Path, req.Value)
	})
}

// RemoveSubClient handles DELETE /api/sessions/:id/subclients/:sub
func (h *Handler) RemoveSubClient(c *gin.Context) {
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}

	h.apply(c, "REMOVE_SUB", func(e *editor.Editor) error {
		return e.RemoveSubClient(sub)
	})
}

// AddPartClient handles POST /api/sessions/:id/subclients/:sub/partclients
func (h *Handler) AddPartClient(c *gin.Context) {
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}

	h.apply(c, "ADD_PART", func(e *editor.Editor) error {
		return e.AddPartClient(sub)
	})
}

// UpdatePartClient handles PATCH /api/sessions/:id/subclients/:sub/partclients/:part
func (h *Handler) UpdatePartClient(c *gin.Context) {
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}
	part, ok := indexParam(c, "part")
	if !ok {
		return
	}
	var req partEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field edit"})
		return
	}

	h.apply(c, "UPDATE_PART", func(e *editor.Editor) error {
		return e.UpdatePartClient(sub, part, req.Field, req.Value)
	})
}

// RemovePartClient handles DELETE /api/sessions/:id/subclients/:sub/partclients/:part
func (h *Handler) RemovePartClient(c *gin.Context) {
	sub, ok := indexParam(c, "sub")
	if !ok {
		return
	}
	part, ok := indexParam(c, "part")
	if !ok {
		return
	}

	h.apply(c, "REMOVE_PART", func(e *editor.Editor) error {
		return e.RemovePartClient(sub, part)
	})
}

// SetActiveView handles PUT /api/sessions/:id/view
func (h *Handler) SetActiveView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid view"})
		return
	}

	view := domain.MainView()
	if req.View == "sub" {
		if req.Index == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index is required for the sub view"})
			return
		}
		view = domain.SubView(*req.Index)
	}

	h.apply(c, "SET_VIEW", func(e *editor.Editor) error {
		return e.SetActiveView(view)
	})
}

// Submit handles POST /api/sessions/:id/submit
func (h *Handler) Submit(c *gin.Context) {
	regID, err := h.svc.Submit(c.Request.Context(), c.GetString(requestIDKey), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":         "success",
		"message":        "Registration queued",
		"registrationId": regID,
	})
}

func (h *Handler) apply(c *gin.Context, action string, op func(*editor.Editor) error) {
	projection, err := h.svc.Apply(c.GetString(requestIDKey), c.Param("id"), action, op)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// respondError maps editor and service errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var (
		pathErr     domain.InvalidPathError
		typeErr     domain.ValueTypeError
		rangeErr    domain.IndexOutOfRangeError
		capacityErr domain.CapacityExceededError
		sessionErr  domain.SessionNotFoundError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &pathErr), errors.As(err, &typeErr):
		status = http.StatusBadRequest
	case errors.As(err, &rangeErr), errors.As(err, &sessionErr):
		status = http.StatusNotFound
	case errors.As(err, &capacityErr):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// indexParam parses a positional index path parameter
func indexParam(c *gin.Context, key string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(key))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + " index"})
		return 0, false
	}
	return idx, true
}
