package mailer

import (
	"context"

	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/sirupsen/logrus"
)

// StdErrMailer only logs messages. Used in development where no SES access is
// available.
type StdErrMailer struct{}

func NewStdErrMailer() *StdErrMailer {
	return &StdErrMailer{}
}

func (m *StdErrMailer) Send(ctx context.Context, msg Message) error {
	Logger.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("=== mock sent email === \n", msg.Body)
	return nil
}
