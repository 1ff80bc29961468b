// Package rest — HTTP-поверхность доски: авторизация, просмотры заказов,
// чек-листы, оповещения и SSE-стрим событий.
package rest

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/rknpizza/counterboard/internal/domain"
	"github.com/rknpizza/counterboard/internal/notifier"
	"github.com/rknpizza/counterboard/internal/ports"
	"github.com/rknpizza/counterboard/internal/usecase"
	"github.com/rknpizza/counterboard/pkg/httpx"
)

// Локальные контракты хендлеров: доска и контроллер оповещений
// нужны транспорту только этими операциями.
type (
	boardView interface {
		Active() []domain.Order
		Completed() []domain.Order
		OrderByID(id int64) (*domain.Order, bool)
	}
	notifierControl interface {
		State() notifier.State
		SetMuted(ctx context.Context, muted bool) error
	}
)

type Handler struct {
	service  *usecase.BoardService
	board    boardView
	notifier notifierControl
	hub      *EventHub
	auth     *SessionAuth
	log      ports.Logger
}

func NewHandler(
	service *usecase.BoardService,
	board boardView,
	notifier notifierControl,
	hub *EventHub,
	auth *SessionAuth,
	log ports.Logger,
) *Handler {
	return &Handler{
		service:  service,
		board:    board,
		notifier: notifier,
		hub:      hub,
		auth:     auth,
		log:      log,
	}
}

// RouterOptions — необязательные части роутера.
type RouterOptions struct {
	StaticDir      string
	TracingEnabled bool
	ServiceName    string
	HandlerTimeout time.Duration
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.TracingEnabled {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/login", h.login)

	authed := api.Group("", h.auth.Middleware())
	// SSE-стрим живёт дольше любого таймаута хендлера.
	authed.GET("/events", h.streamEvents)

	timed := authed.Group("", httpx.TimeoutMiddleware(opts.HandlerTimeout))
	timed.POST("/logout", h.logout)
	timed.GET("/orders", h.getOrders)
	timed.PATCH("/orders/:id", h.patchOrder)
	timed.POST("/orders/:id/checklist", h.toggleChecklist)
	timed.GET("/notifications", h.getNotifications)
	timed.PUT("/notifications", h.putNotifications)

	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
		r.StaticFile("/", filepath.Join(opts.StaticDir, "index.html"))
	}

	return r
}

// orderView — заказ в ответе доски: сам заказ, флаги чек-листа
// и готовность к выдаче.
type orderView struct {
	domain.Order
	Checked     map[string]bool `json:"checked"`
	CanComplete bool            `json:"can_complete"`
}

// Границы limit для просмотров доски: стойке хватает десятков заказов,
// но completed-просмотр за день может разрастись.
const (
	defaultOrdersLimit = 100
	maxOrdersLimit     = 500
)

// getOrders — GET /api/orders?status=active|completed&limit=N.
func (h *Handler) getOrders(c *gin.Context) {
	view, ok := httpx.ParseBoardView(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or completed"})
		return
	}
	limit := httpx.ParseLimit(c, defaultOrdersLimit, maxOrdersLimit)

	var orders []domain.Order
	if view == "active" {
		orders = h.board.Active()
	} else {
		orders = h.board.Completed()
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}

	ctx := c.Request.Context()
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		checked, err := h.service.Checked(ctx, orders[i].ID)
		if err != nil {
			h.log.Errorf(ctx, "чтение чек-листа заказа %d: %v", orders[i].ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		canComplete, err := h.service.CanComplete(ctx, &orders[i])
		if err != nil {
			h.log.Errorf(ctx, "гейт заказа %d: %v", orders[i].ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		views = append(views, orderView{Order: orders[i], Checked: checked, CanComplete: canComplete})
	}

	c.JSON(http.StatusOK, gin.H{"status": view, "orders": views})
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

type patchOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// patchOrder — PATCH /api/orders/:id: перевод статуса через источник.
func (h *Handler) patchOrder(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req patchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	order, found := h.board.OrderByID(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	ctx := c.Request.Context()
	updated, err := h.service.Transition(ctx, order, domain.Status(req.Status))
	switch {
	case errors.Is(err, usecase.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status value"})
	case errors.Is(err, usecase.ErrChecklistIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": "checklist incomplete"})
	case err != nil:
		h.log.Errorf(ctx, "переход заказа %d: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "order source unavailable"})
	default:
		c.JSON(http.StatusOK, updated)
	}
}

type toggleRequest struct {
	Key string `json:"key" binding:"required"`
}

// toggleChecklist — POST /api/orders/:id/checklist: переключение флага позиции.
func (h *Handler) toggleChecklist(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	ctx := c.Request.Context()
	checked, err := h.service.ToggleChecked(ctx, id, req.Key)
	if err != nil {
		h.log.Errorf(ctx, "переключение чек-листа заказа %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": req.Key, "checked": checked})
}

// getNotifications — GET /api/notifications: состояние оповещений.
func (h *Handler) getNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifier.State())
}

type putNotificationsRequest struct {
	Muted *bool `json:"muted" binding:"required"`
}

// putNotifications — PUT /api/notifications: mute/unmute с сохранением.
func (h *Handler) putNotifications(c *gin.Context) {
	var req putNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "muted is required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.notifier.SetMuted(ctx, *req.Muted); err != nil {
		h.log.Errorf(ctx, "переключение mute: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, h.notifier.State())
}
