package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transport-net/game"
	"transport-net/interaction"
	"transport-net/models"
)

// CreateSession starts a simulation on the caller's network, or on a fresh
// guest network.
func (h *Handler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), c.GetString(userKey), req)
	if err != nil {
		h.respondError(c, "create session", err)
		return
	}

	c.JSON(http.StatusCreated, sess.Snapshot())
}

// GetSession returns the current snapshot
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// SelectTool switches the session's active tool
func (h *Handler) SelectTool(c *gin.Context) {
	var req models.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tool, err := interaction.ParseTool(req.Tool)
	if err != nil {
		badRequest(c, err)
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, actionResponse(sess, sess.SelectTool(tool)))
}

// Click resolves a map click with the active tool
func (h *Handler) Click(c *gin.Context) {
	var req models.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}
	out := sess.Click(models.Pt(req.X, req.Y))
	c.JSON(http.StatusOK, actionResponse(sess, out))
}

// Tick advances the session by Frames frames of DtMs each
func (h *Handler) Tick(c *gin.Context) {
	var req models.TickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Frames == 0 {
		req.Frames = 1
	}

	sess, ok := h.session(c)
	if !ok {
		return
	}

	dt := time.Duration(req.DtMs * float64(time.Millisecond))
	var arrivals int
	var revenue float64
	for i := 0; i < req.Frames; i++ {
		res := sess.Frame(dt)
		arrivals += len(res.Arrivals)
		revenue += res.ArrivalRevenue + res.PassiveRevenue
	}

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, models.ActionResponse{
		Success:  true,
		Message:  fmt.Sprintf("%d frames, %d arrivals, %.0f earned", req.Frames, arrivals, revenue),
		Snapshot: &snap,
	})
}

// CloseSession stops a session after flushing its pending saves
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id"), c.GetString(userKey)); err != nil {
		h.respondError(c, "close session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) session(c *gin.Context) (*game.Session, bool) {
	sess, err := h.sessions.Get(c.Param("id"), c.GetString(userKey))
	if err != nil {
		h.respondError(c, "find session", err)
		return nil, false
	}
	return sess, true
}

func actionResponse(sess *game.Session, out interaction.Outcome) models.ActionResponse {
	snap := sess.Snapshot()
	return models.ActionResponse{
		Success:  out.Err == nil && out.Level != models.NoticeError,
		Message:  out.Notice,
		Action:   string(out.Action),
		Snapshot: &snap,
	}
}
