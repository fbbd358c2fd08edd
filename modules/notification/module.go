package notification

import (
	"embed"

	"github.com/pdnportal/portal/modules/notification/infrastructure/persistence"
	"github.com/pdnportal/portal/modules/notification/presentation/controllers"
	"github.com/pdnportal/portal/modules/notification/services"
	"github.com/pdnportal/portal/pkg/application"
	"github.com/pdnportal/portal/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/notification-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(m.Name(), migrationFiles, "infrastructure/persistence/schema")
	app.RegisterServices(
		services.NewNotificationService(
			persistence.NewNotificationRepository(),
			app.Websocket(),
			configuration.Use().Logger(),
		),
	)
	app.RegisterControllers(
		controllers.NewNotificationAPIController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "notification"
}
