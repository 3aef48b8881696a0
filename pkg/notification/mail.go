package notification

import (
	"fmt"
	"net/smtp"

	"github.com/raykavin/stratbook/pkg/core"
	log "github.com/sirupsen/logrus"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mail sends every notification as an email through an SMTP server.
type Mail struct {
	auth    smtp.Auth
	address string
	to      string
	from    string
	send    sendMailFunc
}

type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

// NewMail creates a new SMTP notifier
func NewMail(params MailParams) Mail {
	return Mail{
		from:    params.From,
		to:      params.To,
		address: fmt.Sprintf("%s:%d", params.SMTPServerAddress, params.SMTPServerPort),
		auth:    smtp.PlainAuth("", params.From, params.Password, params.SMTPServerAddress),
		send:    smtp.SendMail,
	}
}

func (m Mail) message(subject, body string) []byte {
	return []byte(fmt.Sprintf("To: %s\r\nFrom: stratbook <%s>\r\nSubject: %s\r\n\r\n%s\r\n",
		m.to, m.from, subject, body))
}

func (m Mail) deliver(subject, body string) {
	if err := m.send(m.address, m.auth, m.from, []string{m.to}, m.message(subject, body)); err != nil {
		log.WithError(err).Error("notification/mail: send email")
	}
}

// Notify sends text as an email
func (m Mail) Notify(text string) {
	m.deliver("stratbook", text)
}

// OnOrder sends an email for every order update
func (m Mail) OnOrder(order core.Order) {
	m.deliver(orderTitle(order), order.String())
}

// OnError sends an email describing err
func (m Mail) OnError(err error) {
	m.deliver("🛑 ERROR", errorMessage(err))
}
