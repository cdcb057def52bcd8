package account

import (
	"net/mail"

	"github.com/eduflexsms/eduflex/core"
)

const welcomeTemplate = "welcome_teacher"

// NewWelcomeEmail greets a new teacher. It returns nil when the account has no email.
func NewWelcomeEmail(acc Account) *core.EmailMessage {
	if acc.Email == "" {
		return nil
	}
	return &core.EmailMessage{
		To:           []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject:      "Your teacher account",
		TemplateName: welcomeTemplate,
		TemplateData: acc,
	}
}
