package joborder

import (
	"embed"

	coreservices "github.com/pdnportal/portal/modules/core/services"
	"github.com/pdnportal/portal/modules/joborder/handlers"
	"github.com/pdnportal/portal/modules/joborder/infrastructure/persistence"
	"github.com/pdnportal/portal/modules/joborder/presentation/controllers"
	"github.com/pdnportal/portal/modules/joborder/services"
	"github.com/pdnportal/portal/pkg/application"
)

//go:embed infrastructure/persistence/schema/joborder-schema.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(m.Name(), migrationFiles, "infrastructure/persistence/schema")

	repo := persistence.NewJobOrderRepository()
	directory := app.Service(coreservices.DirectoryService{}).(*coreservices.DirectoryService)

	app.RegisterServices(
		services.NewWorkflowService(repo, directory, app.EventPublisher()),
		services.NewStatsService(repo, persistence.NewJobOrderStatsRepository()),
	)
	app.RegisterControllers(
		controllers.NewJobOrderAPIController(app),
	)
	handlers.RegisterNotificationHandler(app)
	return nil
}

func (m *Module) Name() string {
	return "joborder"
}
