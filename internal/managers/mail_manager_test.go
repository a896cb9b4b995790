package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plan-pleno/internal/config"
)

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "planpleno.app", senderDomain("Plan Pleno <team@planpleno.app>"))
	assert.Equal(t, "example.com", senderDomain("someone@example.com"))
	assert.Equal(t, "", senderDomain("no address"))
}

func TestSendWelcomeMailSkippedOutsideProduction(t *testing.T) {
	mailMgr := NewMailManager(config.ServerConfig{NodeEnv: "development"}, config.EmailConfig{})

	assert.Equal(t, defaultSender, mailMgr.from)
	assert.NoError(t, mailMgr.SendWelcomeMail("user@example.com", "User"))
}
