package mailer

import (
	"strings"

	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("mailer",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Notifier {
		if strings.TrimSpace(cfg.Mail.SendGridAPIKey) == "" {
			log.Warn("sendgrid api key missing, invoice notifications disabled")
			return NoopNotifier{}
		}
		return NewSendGridNotifier(cfg, log)
	}),
)
