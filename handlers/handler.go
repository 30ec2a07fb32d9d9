package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transport-net/game"
	"transport-net/store"
)

const userKey = "userID"

// Handler serves the persistence and session APIs.
type Handler struct {
	repo     store.Repository
	sessions *game.Manager
	logger   *slog.Logger
}

// New creates a handler. sessions may be nil to serve only the persistence API.
func New(repo store.Repository, sessions *game.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{repo: repo, sessions: sessions, logger: logger}
}

// Register mounts every API route on group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.Use(RequireUser())

	// Persistence routes
	group.GET("/network", h.GetNetworks)
	group.POST("/network", h.CreateNetwork)
	group.GET("/network/:id", h.GetNetwork)
	group.PATCH("/network/:id/money", h.UpdateNetworkMoney)

	group.POST("/station", h.CreateStation)
	group.DELETE("/station/:id", h.DeleteStation)

	group.POST("/line", h.CreateLine)
	group.POST("/line/:id/stations", h.AddStationToLine)
	group.DELETE("/line/:id", h.DeleteLine)

	// Session routes
	if h.sessions != nil {
		group.POST("/session", h.CreateSession)
		group.GET("/session/:id", h.GetSession)
		group.POST("/session/:id/tool", h.SelectTool)
		group.POST("/session/:id/click", h.Click)
		group.POST("/session/:id/tick", h.Tick)
		group.DELETE("/session/:id", h.CloseSession)
	}
}

// RequireUser rejects requests without the user header.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(store.UserHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, store.ErrorResponse{
				Error: "Missing " + store.UserHeader + " header",
				Code:  store.CodeBadRequest,
			})
			return
		}
		c.Set(userKey, userID)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"user", c.GetString(userKey),
		)
	}
}

func (h *Handler) storeFor(c *gin.Context) store.NetworkStore {
	return h.repo.ForUser(c.GetString(userKey))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, store.ErrorResponse{Error: err.Error(), Code: store.CodeBadRequest})
}

// respondError maps store and session errors to HTTP statuses.
func (h *Handler) respondError(c *gin.Context, op string, err error) {
	status, code := http.StatusInternalServerError, store.CodeInternal
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, game.ErrSessionNotFound):
		status, code = http.StatusNotFound, store.CodeNotFound
	case errors.Is(err, store.ErrInsufficientFunds):
		status, code = http.StatusBadRequest, store.CodeInsufficientFunds
	case errors.Is(err, store.ErrInvalidEndpoints):
		status, code = http.StatusBadRequest, store.CodeInvalidEndpoints
	case errors.Is(err, store.ErrInvalidID):
		status, code = http.StatusBadRequest, store.CodeInvalidID
	case errors.Is(err, store.ErrStationInUse):
		status, code = http.StatusConflict, store.CodeStationInUse
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "op", op, "error", err)
		msg = "Failed to " + op
	}
	c.JSON(status, store.ErrorResponse{Error: msg, Code: code})
}
