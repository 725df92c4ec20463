package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"wheelstore/internal/config"
	"wheelstore/internal/models"

	"gopkg.in/gomail.v2"
)

// EmailService sends order confirmations. Without SMTP credentials it runs
// disabled and every send is a logged no-op, so checkout never depends on
// mail delivery.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(cfg *config.Config) *EmailService {
	if cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		log.Println("EmailService - SMTP not configured, email sending disabled")
		return &EmailService{}
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		log.Printf("EmailService - invalid SMTP port %q, email sending disabled", cfg.SMTPPort)
		return &EmailService{}
	}

	return &EmailService{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPUser,
	}
}

// IsConfigured reports whether mail can actually be sent.
func (es *EmailService) IsConfigured() bool {
	return es.dialer != nil
}

// SendOrderConfirmation mails the customer a summary of their order.
func (es *EmailService) SendOrderConfirmation(order *models.Order) error {
	if !es.IsConfigured() {
		log.Printf("EmailService.SendOrderConfirmation - skipped (disabled), OrderNumber: %s", order.OrderNumber)
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", order.CustomerName)
	fmt.Fprintf(&body, "Thank you for your order %s.\n\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&body, "  %s  x%d  €%.2f\n", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(&body, "\nTotal: €%.2f\n", order.TotalPrice)
	fmt.Fprintf(&body, "Delivery address: %s\n", order.Address)

	msg := gomail.NewMessage()
	msg.SetHeader("From", es.from)
	msg.SetHeader("To", order.CustomerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", order.OrderNumber))
	msg.SetBody("text/plain", body.String())

	if err := es.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	log.Printf("EmailService.SendOrderConfirmation - sent to %s, OrderNumber: %s", order.CustomerEmail, order.OrderNumber)
	return nil
}
