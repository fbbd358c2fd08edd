package modules

import (
	"github.com/pdnportal/portal/modules/core"
	"github.com/pdnportal/portal/modules/joborder"
	"github.com/pdnportal/portal/modules/notification"
	"github.com/pdnportal/portal/pkg/application"
)

// BuiltInModules in registration order: joborder resolves services from the
// two modules before it.
var BuiltInModules = []application.Module{
	core.NewModule(),
	notification.NewModule(),
	joborder.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
