package tenant

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenant/service"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.ProvideStore[domain.Tenant]),
	fx.Provide(service.NewService),
)
