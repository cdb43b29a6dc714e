package invoice

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/invoice/render"
	"github.com/firsttechlabs/simpleinvoice-be/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewService),
	fx.Provide(render.NewRenderer),
)
