package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pdnportal/portal/modules/notification/domain/entities/notification"
	"github.com/pdnportal/portal/modules/notification/services"
	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/composables"
	"github.com/pdnportal/portal/pkg/configuration"
	"github.com/pdnportal/portal/pkg/httpapi"
	"github.com/pdnportal/portal/pkg/middleware"
)

type NotificationAPIController struct {
	app       application.Application
	service   *services.NotificationService
	apiPrefix string
}

func NewNotificationAPIController(app application.Application) application.Controller {
	return &NotificationAPIController{
		app:       app,
		service:   app.Service(services.NotificationService{}).(*services.NotificationService),
		apiPrefix: "/notifications/api",
	}
}

func (c *NotificationAPIController) Key() string {
	return c.apiPrefix
}

func (c *NotificationAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	conf := configuration.Use()
	api.Use(
		middleware.WithUserID(conf.UserIDHeader),
	)

	api.HandleFunc("/notifications", c.list).Methods(http.MethodGet)
	api.HandleFunc("/notifications/unread-count", c.unreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}:read", c.markRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications:read-all", c.markAllRead).Methods(http.MethodPost)
}

func (c *NotificationAPIController) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	conf := configuration.Use()
	params := &notification.FindParams{
		UserID:     userID,
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      conf.PageSize,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.writeError(w, http.StatusBadRequest, "NOTIFICATION_INVALID_FILTER", "limit must be a positive integer")
			return
		}
		if limit > conf.MaxPageSize {
			limit = conf.MaxPageSize
		}
		params.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.writeError(w, http.StatusBadRequest, "NOTIFICATION_INVALID_FILTER", "offset must be a non-negative integer")
			return
		}
		params.Offset = offset
	}

	items, err := c.service.List(r.Context(), params)
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, "NOTIFICATION_INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []*notification.Notification{}
	}
	c.writeJSON(w, http.StatusOK, items)
}

func (c *NotificationAPIController) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	count, err := c.service.CountUnread(r.Context(), userID)
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, "NOTIFICATION_INTERNAL", "internal error")
		return
	}
	c.writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (c *NotificationAPIController) markRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		c.writeError(w, http.StatusBadRequest, "NOTIFICATION_INVALID_ID", "id must be an integer")
		return
	}
	if err := c.service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			c.writeError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
			return
		}
		c.writeError(w, http.StatusInternalServerError, "NOTIFICATION_INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *NotificationAPIController) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	if err := c.service.MarkAllRead(r.Context(), userID); err != nil {
		c.writeError(w, http.StatusInternalServerError, "NOTIFICATION_INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *NotificationAPIController) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := composables.UseUserID(r.Context())
	if err != nil {
		c.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "request is missing a valid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

func (c *NotificationAPIController) writeError(w http.ResponseWriter, status int, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, map[string]string{
		"request_id": w.Header().Get("X-Request-Id"),
	})
}

func (c *NotificationAPIController) writeJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpapi.WriteJSON(w, status, payload)
}
