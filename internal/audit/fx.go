package audit

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/audit/repository"
	"github.com/firsttechlabs/simpleinvoice-be/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
