package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/configuration"
	"github.com/pdnportal/portal/pkg/middleware"
)

// WebSocketController mounts the push hub. The user-id middleware runs on
// the upgrade request so authenticated connections join their user channel.
type WebSocketController struct {
	app      application.Application
	basePath string
}

func NewWebSocketController(app application.Application) application.Controller {
	return &WebSocketController{
		app:      app,
		basePath: "/ws",
	}
}

func (c *WebSocketController) Key() string {
	return c.basePath
}

func (c *WebSocketController) Register(r *mux.Router) {
	conf := configuration.Use()
	handler := middleware.WithUserID(conf.UserIDHeader)(c.app.Websocket())
	r.Handle(c.basePath, handler).Methods(http.MethodGet)
}
