package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/httpapi"
)

type HealthController struct {
	app      application.Application
	basePath string
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{
		app:      app,
		basePath: "/health",
	}
}

func (c *HealthController) Key() string {
	return c.basePath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.check).Methods(http.MethodGet)
}

func (c *HealthController) check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	payload := map[string]string{"status": "ok"}
	if err := c.app.DB().Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		payload = map[string]string{"status": "degraded", "database": err.Error()}
	}
	_ = httpapi.WriteJSON(w, status, payload)
}
