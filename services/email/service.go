// Package emailsvc sends the application's emails through SendGrid, or prints them when no API key is set.
package emailsvc

import (
	"os"

	"github.com/eduflexsms/eduflex/core"
)

// NewService picks SendGrid when an API key is configured.
func NewService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Mail.SendgridAPIKey != "" {
		return NewSendgridService(conf, logger)
	}
	return NewConsoleService(conf, logger, os.Stdout)
}
