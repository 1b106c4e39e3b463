// Package notification composes and delivers the customer messages that
// accompany order lifecycle events. Delivery is best-effort by contract: a
// failed send is logged by the caller and never blocks or rolls back the
// transition that produced it.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/agah-solutions/forge/internal/config"
	"github.com/agah-solutions/forge/internal/entity"
)

// Event is the payload published on the order events topic whenever an order
// enters a state that notifies the customer.
type Event struct {
	Kind           entity.NotificationKind `json:"kind"`
	OrderNumber    string                  `json:"order_number"`
	CustomerName   string                  `json:"customer_name"`
	CustomerEmail  string                  `json:"customer_email"`
	EstimatedPrice string                  `json:"estimated_price,omitempty"`
	FinalPrice     string                  `json:"final_price,omitempty"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

// Message is a rendered customer notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a composed message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Module wires the composer and default sender.
var Module = fx.Options(
	fx.Provide(NewComposer),
	fx.Provide(NewSender),
)

// Composer renders notification messages with the shop's identity baked in.
type Composer struct {
	company config.Company
}

// NewComposer builds a Composer from configuration.
func NewComposer(cfg config.Config) *Composer {
	return &Composer{company: cfg.Company}
}

// Compose renders the message for an event. Unknown kinds error so a bad
// payload surfaces in worker logs instead of mailing an empty template.
func (c *Composer) Compose(ev Event) (Message, error) {
	msg := Message{To: ev.CustomerEmail}

	switch ev.Kind {
	case entity.NotifyReceived:
		msg.Subject = fmt.Sprintf("Order Received - #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nWe received your order #%s. Our team will review it and get back to you within %d hours with a quote.\n\n%s",
			ev.CustomerName, ev.OrderNumber, c.company.ResponseTimeHours, c.signature())
	case entity.NotifyQuoteReady:
		msg.Subject = fmt.Sprintf("Your Quote Is Ready - Order #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nThe estimate for your order #%s is ready: $%s MXN.\n\nTrack your order at %s/orders?order=%s\n\n%s",
			ev.CustomerName, ev.OrderNumber, ev.EstimatedPrice, c.company.FrontendURL, ev.OrderNumber, c.signature())
	case entity.NotifyFinalPriceReady:
		msg.Subject = fmt.Sprintf("Final Price Ready! - Order #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nYour final price is ready for order #%s!\n\nFinal price: $%s MXN\n\nTo confirm your order visit: %s/orders/confirm?order=%s\n\n%s",
			ev.CustomerName, ev.OrderNumber, ev.FinalPrice, c.company.FrontendURL, ev.OrderNumber, c.signature())
	case entity.NotifyConfirmed:
		msg.Subject = fmt.Sprintf("Order Confirmed - #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nYour order #%s is confirmed and queued for production.\n\n%s",
			ev.CustomerName, ev.OrderNumber, c.signature())
	case entity.NotifyInProduction:
		msg.Subject = fmt.Sprintf("Your Order Is In Production - #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nWork on your order #%s has started.\n\n%s",
			ev.CustomerName, ev.OrderNumber, c.signature())
	case entity.NotifyCompleted:
		msg.Subject = fmt.Sprintf("Your Order Is Completed! - Order #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nGreat news! Your order #%s is completed and ready for pickup or delivery.\n\nTo coordinate delivery, contact us:\n- Phone: %s\n- Email: %s\n\nThank you for trusting %s!",
			ev.CustomerName, ev.OrderNumber, c.company.ContactPhone, c.company.ContactEmail, c.company.Name)
	case entity.NotifyCanceled:
		msg.Subject = fmt.Sprintf("Order Canceled - #%s", ev.OrderNumber)
		msg.Body = fmt.Sprintf(
			"Hello %s,\n\nYour order #%s has been canceled. If this is unexpected, reach us at %s.\n\n%s",
			ev.CustomerName, ev.OrderNumber, c.company.ContactEmail, c.signature())
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", ev.Kind)
	}

	return msg, nil
}

func (c *Composer) signature() string {
	return fmt.Sprintf("Best regards,\n%s", c.company.Name)
}

// logSender records outbound messages on the service log. It stands in for
// the mail provider integration; swapping it out only requires another
// Sender implementation in the Fx graph.
type logSender struct {
	logger *zap.Logger
}

// NewSender returns the default log-backed sender.
func NewSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("customer notification dispatched",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
