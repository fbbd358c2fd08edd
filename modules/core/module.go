package core

import (
	"embed"

	"github.com/pdnportal/portal/modules/core/infrastructure/persistence"
	"github.com/pdnportal/portal/modules/core/presentation/controllers"
	"github.com/pdnportal/portal/modules/core/services"
	"github.com/pdnportal/portal/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(m.Name(), migrationFiles, "infrastructure/persistence/schema")
	app.RegisterServices(
		services.NewDirectoryService(
			persistence.NewUserRepository(),
			persistence.NewApproverRepository(),
		),
	)
	app.RegisterControllers(
		controllers.NewHealthController(app),
		controllers.NewWebSocketController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
