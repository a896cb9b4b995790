package managers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"plan-pleno/internal/config"
)

// MailMgr sends transactional mails to users.
type MailMgr interface {
	SendWelcomeMail(email, displayName string) error
}

// MailManager formats mails with hermes and delivers them through mailgun.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun mailgun.Mailgun
	from    string
	enabled bool
}

const defaultSender = "Plan Pleno <team@planpleno.app>"

// SendWelcomeMail greets a freshly registered user. Outside of production the
// mail is skipped.
func (mm *MailManager) SendWelcomeMail(email, displayName string) error {
	if !mm.enabled {
		log.Info("Skipping welcome mail outside of production")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: displayName,
			Intros: []string{
				"Welcome to Plan Pleno! We're very excited to have you on board.",
				"Save the activities you like and follow your friends to see what they are up to.",
			},
			Outros: []string{
				"Need help, or have questions? Just reply to this email, we'd love to help.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.from, "Welcome to Plan Pleno", "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending welcome mail: " + err.Error())
		return err
	}
	log.Debug("Welcome mail sent to ", email)

	return nil
}

// NewMailManager initializes a MailManager. The mailgun domain is taken from the
// sender address, the API key from EMAIL_PASSWORD.
func NewMailManager(serverCfg config.ServerConfig, emailCfg config.EmailConfig) *MailManager {
	log.Info("Initializing mail manager")

	enabled := serverCfg.IsProduction()
	if !enabled {
		log.Info("Running outside of production, mails will not be sent to users")
	}

	from := emailCfg.From
	if from == "" {
		from = defaultSender
	}

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "Plan Pleno",
				Link:      "https://planpleno.app/",
				Copyright: fmt.Sprintf("© %d Plan Pleno", time.Now().Year()),
			},
		},
		Mailgun: mailgun.NewMailgun(senderDomain(from), emailCfg.Password),
		from:    from,
		enabled: enabled,
	}
	log.Info("Initialized mail manager")
	return mm
}

// senderDomain extracts the domain of an address like "Name <user@example.com>".
func senderDomain(from string) string {
	at := strings.LastIndex(from, "@")
	if at < 0 {
		return ""
	}
	return strings.TrimRight(from[at+1:], "> ")
}
