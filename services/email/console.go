package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/trezcool/mtihani/core"
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	logger           core.Logger
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns an EmailService that writes messages to the log;
// dev default.
func NewConsoleService(conf *core.Config, logger core.Logger) *consoleService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmailAddr(),
		subjPrefix:       "[" + conf.AppName + "] ",
		logger:           logger,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.String())
	}
	svc.logger.Info(fmt.Sprintf(
		"From: %s\nTo: %s\nSubject: %s\n\n%s",
		svc.defaultFromEmail.String(), strings.Join(to, ", "), svc.subjPrefix+msg.Subject, msg.Body,
	))
}
