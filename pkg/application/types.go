package application

import (
	"context"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdnportal/portal/pkg/eventbus"
)

// Controller mounts a set of routes on the root router. Key must be unique
// per controller so module reloads replace rather than duplicate routes.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Application is the assembled portal: a service registry, controller set
// and the shared infrastructure modules wire themselves into.
type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBus
	Websocket() Huber
	Migrations() MigrationManager

	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	Services() map[reflect.Type]interface{}
	Service(service interface{}) interface{}

	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
}

// Module wires a vertical feature slice (services, controllers, schema)
// into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type SeedFunc func(ctx context.Context, app Application) error

// Seeder populates initial data after migrations have run.
type Seeder interface {
	Seed(ctx context.Context, app Application) error
	Register(seedFuncs ...SeedFunc)
}
