package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"storefront_back_end/internal/config"
	"storefront_back_end/internal/models"
)

// MailSender est la partie du client go-mail utilisée ici
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// OrderMailer envoie l'e-mail de confirmation de commande
type OrderMailer struct {
	sender  MailSender
	from    string
	timeout time.Duration
	log     *zap.Logger
}

// NewSMTPClient configure le client SMTP (TLS obligatoire, auth LOGIN)
func NewSMTPClient(cfg config.SMTPConfig) (*mail.Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST non configuré")
	}
	return mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

func NewOrderMailer(sender MailSender, from string, log *zap.Logger) *OrderMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderMailer{sender: sender, from: from, timeout: 15 * time.Second, log: log}
}

func (m *OrderMailer) OrderConfirmed(ctx context.Context, order *models.Order) error {
	msg, err := m.confirmationMessage(order)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.log.Info("📤 Envoi de l'e-mail", zap.String("to", order.CustomerEmail), zap.String("record_id", order.ID))
	return m.sender.DialAndSendWithContext(ctx, msg)
}

func (m *OrderMailer) confirmationMessage(order *models.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, err
	}
	if err := msg.To(order.CustomerEmail); err != nil {
		return nil, err
	}
	msg.Subject("Confirmation de votre commande " + orderLabel(order))

	body, err := confirmationHTML(order)
	if err != nil {
		return nil, err
	}
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

func orderLabel(o *models.Order) string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(minor int64, currency string) string {
		return fmt.Sprintf("%.2f %s", float64(minor)/100, currency)
	},
	"line": func(price float64, qty int) string {
		return fmt.Sprintf("%.2f", price*float64(qty))
	},
}).Parse(`<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Confirmation de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande {{.Label}}</h2>
		<p>Bonjour {{.Order.CustomerName}},</p>
		<p>Votre paiement a bien été reçu.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Produit</th>
					<th style="padding: 10px; text-align: left;">Quantité</th>
					<th style="padding: 10px; text-align: left;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{range .Order.Items}}
				<tr>
					<td style="padding: 10px;">{{.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{printf "%.2f" .Price}}</td>
					<td style="padding: 10px;">{{line .Price .Quantity}}</td>
				</tr>
			{{end}}
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total :</td>
					<td style="padding: 10px; font-weight: bold;">{{money .Order.Amount .Order.Currency}}</td>
				</tr>
			</tfoot>
		</table>
	</div>
</body>
</html>`))

func confirmationHTML(order *models.Order) (string, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		Label string
		Order *models.Order
	}{orderLabel(order), order})
	if err != nil {
		return "", fmt.Errorf("rendu e-mail: %w", err)
	}
	return buf.String(), nil
}
