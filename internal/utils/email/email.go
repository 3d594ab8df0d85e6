package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/financewallet/wallet/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendBudgetAlert notifies a user that a budget has crossed its alert
// threshold.
func (s *Sender) SendBudgetAlert(to, username, budgetName string, spent, limit decimal.Decimal, percentage decimal.Decimal, currency string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Budget Alert: %s", budgetName)

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your budget %q has reached %s%% of its limit.\n"+
			"Spent: %s %s of %s %s.\n\n"+
			"Best regards,\nFinance Wallet",
		username, budgetName, percentage, spent, currency, limit, currency,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send budget alert to %s: %v", to, err)
		return fmt.Errorf("failed to send budget alert: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
