package auth

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(service.NewService),
)
