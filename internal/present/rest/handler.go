package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	stderrors "errors"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/present/rest/middleware"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/present/rest/presenter"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/service"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/usecase"
)

type Handler struct {
	registration *usecase.RegistrationUsecase
	event        *usecase.EventUsecase
	user         *usecase.UserUsecase
	promo        *usecase.PromoUsecase
	auth         *service.AuthService
	signal       *service.SignalService
}

func NewHandler(
	registration *usecase.RegistrationUsecase,
	event *usecase.EventUsecase,
	user *usecase.UserUsecase,
	promo *usecase.PromoUsecase,
	auth *service.AuthService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		registration: registration,
		event:        event,
		user:         user,
		promo:        promo,
		auth:         auth,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authmw := middleware.NewAuthMiddleware(h.auth)
	e.Use(authmw.IdentifyIdentity)

	api := e.Group("/api/v1")
	api.POST("/users", h.handleCreateUser)
	api.POST("/login", h.handleLogin)
	api.GET("/me", h.handleMe, authmw.RequireAuth)

	api.POST("/events", h.handleCreateEvent, authmw.RequireAuth)
	api.GET("/events", h.handleListEvents)
	api.GET("/events/:id", h.handleGetEvent)

	api.POST("/events/:id/signup", h.handleSignup, authmw.RequireAuth)
	api.POST("/events/:id/cancel", h.handleCancel, authmw.RequireAuth)
	api.POST("/events/:id/manage/remove", h.handleRemove, authmw.RequireAuth)
	api.POST("/events/:id/manage/move", h.handleMove, authmw.RequireAuth)

	api.POST("/promo", h.handleCreatePromo, authmw.RequireAuth)
	api.POST("/promo/validate", h.handleValidatePromo)
	api.POST("/promo/redeem", h.handleRedeemPromo, authmw.RequireAuth)

	e.GET("/realtime", h.handleRealtime)
}

func mapError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case stderrors.Is(err, domain.ErrInvalid):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func (h *Handler) handleCreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	user, err := h.user.Register(ctx, input)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.Created(c, user)
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	user, err := h.user.Authenticate(ctx, req.Email, req.Password)
	if stderrors.Is(err, domain.ErrInvalidCredentials) {
		return presenter.Unauthorized(c, "invalid email or password")
	}
	if err != nil {
		return presenter.InternalError(c, err)
	}
	token, err := h.auth.Issue(ctx, user)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"token": token, "user": user})
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.user.Get(ctx, middleware.RequesterID(c))
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleCreateEvent(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateEventInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	input.CreatedBy = middleware.RequesterID(c)

	event, err := h.event.Create(ctx, input)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.Created(c, event)
}

func (h *Handler) handleListEvents(c echo.Context) error {
	events, err := h.event.List(c.Request().Context())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, events)
}

func (h *Handler) handleGetEvent(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := h.event.Get(ctx, c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	etag := fmt.Sprintf(`"%x"`, xxh3.Hash(body))
	if c.Request().Header.Get("If-None-Match") == etag {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set("ETag", etag)
	return c.JSONBlob(http.StatusOK, body)
}

type signupRequest struct {
	RoleID              string `json:"roleId"`
	Notes               string `json:"notes"`
	SpecialRequirements string `json:"specialRequirements"`
}

func (h *Handler) handleSignup(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	requester, err := h.user.Get(ctx, middleware.RequesterID(c))
	if err != nil {
		return mapError(c, err)
	}

	result := h.registration.SignupForEvent(ctx, eventID, usecase.SignupInput{
		UserID: requester.ID,
		RoleID: req.RoleID,
		User: domain.Signup{
			UserID:    requester.ID,
			Username:  requester.Username,
			FirstName: requester.FirstName,
			LastName:  requester.LastName,
			Email:     requester.Email,
			Avatar:    requester.Avatar,
		},
		Notes:               req.Notes,
		SpecialRequirements: req.SpecialRequirements,
		RegisteredBy:        requester.ID,
	})
	if result.Success {
		h.afterRosterChange(c, domain.RosterEvent{
			Type:    domain.RosterEventSignup,
			EventID: eventID,
			RoleID:  req.RoleID,
			UserID:  requester.ID,
		})
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleCancel(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	var req struct {
		RoleID string `json:"roleId"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	userID := middleware.RequesterID(c)
	result := h.registration.CancelSignup(ctx, eventID, usecase.CancelInput{
		UserID: userID,
		RoleID: req.RoleID,
	})
	if result.Success {
		h.afterRosterChange(c, domain.RosterEvent{
			Type:    domain.RosterEventCancel,
			EventID: eventID,
			RoleID:  req.RoleID,
			UserID:  userID,
		})
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleRemove(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	if !domain.CanManageRosters(middleware.RequesterRole(c)) {
		return presenter.Forbidden(c, "roster management requires a leader role")
	}

	var req struct {
		UserID string `json:"userId"`
		RoleID string `json:"roleId"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result := h.registration.RemoveUserFromRole(ctx, eventID, req.UserID, req.RoleID, middleware.RequesterID(c))
	if result.Success {
		h.afterRosterChange(c, domain.RosterEvent{
			Type:    domain.RosterEventRemove,
			EventID: eventID,
			RoleID:  req.RoleID,
			UserID:  req.UserID,
		})
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleMove(c echo.Context) error {
	ctx := c.Request().Context()
	eventID := c.Param("id")

	if !domain.CanManageRosters(middleware.RequesterRole(c)) {
		return presenter.Forbidden(c, "roster management requires a leader role")
	}

	var req struct {
		UserID     string `json:"userId"`
		FromRoleID string `json:"fromRoleId"`
		ToRoleID   string `json:"toRoleId"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result := h.registration.MoveUserBetweenRoles(ctx, eventID, req.UserID, req.FromRoleID, req.ToRoleID, middleware.RequesterID(c))
	if result.Success {
		h.afterRosterChange(c, domain.RosterEvent{
			Type:     domain.RosterEventMove,
			EventID:  eventID,
			RoleID:   req.FromRoleID,
			ToRoleID: req.ToRoleID,
			UserID:   req.UserID,
		})
	}
	return presenter.OK(c, result)
}

// afterRosterChange drops the cached event copy and notifies realtime
// listeners. Neither step affects the already-completed operation.
func (h *Handler) afterRosterChange(c echo.Context, event domain.RosterEvent) {
	ctx := c.Request().Context()
	event.Timestamp = time.Now().UTC()

	h.event.Invalidate(ctx, event.EventID)

	if h.signal == nil {
		return
	}
	if err := h.signal.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish roster event",
			slog.String("eventId", event.EventID),
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
			slog.String("module", "rest"),
		)
	}
}

func (h *Handler) handleCreatePromo(c echo.Context) error {
	ctx := c.Request().Context()

	if !domain.CanManageRosters(middleware.RequesterRole(c)) {
		return presenter.Forbidden(c, "promo management requires a leader role")
	}

	var input usecase.CreatePromoInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}
	input.CreatedBy = middleware.RequesterID(c)

	promo, err := h.promo.Create(ctx, input)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.Created(c, promo)
}

func (h *Handler) handleValidatePromo(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	promo, err := h.promo.Validate(ctx, req.Code)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, promo)
}

func (h *Handler) handleRedeemPromo(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	promo, err := h.promo.Redeem(ctx, req.Code)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, promo)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	EventIds []string `json:"eventIds"`
}

// handleRealtime streams roster events to a WebSocket client. The client
// may narrow the stream with a listen request naming event ids; by default
// every roster event is forwarded.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime is not enabled")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan domain.RosterEvent)
	go h.signal.Realtime(ctx, output)

	filter := make(chan []string)

	go func() {
		defer cancel()
		for {
			var req realtimeRequest
			if err := ws.ReadJSON(&req); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if !ok || (wsErr.Code != websocket.CloseNormalClosure && wsErr.Code != websocket.CloseGoingAway) {
					slog.DebugContext(
						ctx, "WebSocket closed",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case filter <- req.EventIds:
				case <-ctx.Done():
					return
				}
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	var listenIds map[string]bool
	for {
		select {
		case <-ctx.Done():
			return nil
		case ids := <-filter:
			listenIds = make(map[string]bool, len(ids))
			for _, id := range ids {
				listenIds[id] = true
			}
		case event := <-output:
			if listenIds != nil && !listenIds[event.EventID] {
				continue
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
