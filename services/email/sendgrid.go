package emailsvc

import (
	"net/mail"

	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/mtihani/core"
)

type sendgridService struct {
	client           *sendgrid.Client
	defaultFromEmail mail.Address
	subjPrefix       string
	logger           core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(conf *core.Config, logger core.Logger) *sendgridService {
	return &sendgridService{
		client:           sendgrid.NewSendClient(conf.SendgridAPIKey),
		defaultFromEmail: conf.DefaultFromEmailAddr(),
		subjPrefix:       "[" + conf.AppName + "] ",
		logger:           logger,
	}
}

func (svc sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc sendgridService) sendMessage(msg *core.EmailMessage) {
	from := sgmail.NewEmail(svc.defaultFromEmail.Name, svc.defaultFromEmail.Address)
	subject := svc.subjPrefix + msg.Subject

	for _, addr := range msg.To {
		to := sgmail.NewEmail(addr.Name, addr.Address)
		sgMsg := sgmail.NewSingleEmail(from, subject, to, msg.Body, "")
		if _, err := svc.client.Send(sgMsg); err != nil {
			svc.logger.Error("sending email via sendgrid", err)
		}
	}
}
