package customer

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(service.NewService),
)
