package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// SendGridNotifier delivers invoice notifications through SendGrid.
type SendGridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
	log    *zap.Logger
}

func NewSendGridNotifier(cfg config.Config, log *zap.Logger) *SendGridNotifier {
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(cfg.Mail.SendGridAPIKey),
		from:   mail.NewEmail(cfg.Mail.FromName, cfg.Mail.FromAddress),
		log:    log.Named("mailer.sendgrid"),
	}
}

func (n *SendGridNotifier) SendInvoice(ctx context.Context, notification InvoiceNotification) error {
	recipient := strings.TrimSpace(notification.RecipientEmail)
	if recipient == "" {
		return fmt.Errorf("missing recipient")
	}

	to := mail.NewEmail(notification.RecipientName, recipient)
	message := mail.NewSingleEmail(n.from, renderSubject(notification), to, renderBody(notification), "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}

	n.log.Info("invoice notification sent",
		zap.String("invoice_number", notification.Invoice.Number),
	)
	return nil
}
