package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/KHY90/cartpilot-backend/internal/types"
)

// SMTPConfig names the fields §6's configuration section lists for the
// mail fallback channel.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// SMTPMailer is the Mailer implementation backing production use. It uses
// stdlib net/smtp directly — no example repo in the corpus wires a mail
// SDK, and a plain SMTP submission is the natural stdlib fit for a single
// fire-and-forget transactional email.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPriceAlert(ctx context.Context, toEmail, productName string, currentPrice, lowestPrice int64, productLink, productImage string) error {
	subject := fmt.Sprintf("[CartPilot] %s 가격 알림", productName)
	body := fmt.Sprintf(
		"%s\r\n\r\n현재가: %s\r\n90일 최저가: %s\r\n상품 링크: %s\r\n",
		productName, types.Won(currentPrice).Display(), types.Won(lowestPrice).Display(), productLink,
	)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.cfg.From, toEmail, subject, body)

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	return smtp.SendMail(addr, auth, m.cfg.From, []string{toEmail}, []byte(msg))
}
