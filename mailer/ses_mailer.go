package mailer

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

const (
	defaultRegion = "us-west-1"
	charSet       = "UTF-8"
)

// SesMailer dispatches email through AWS SES.
type SesMailer struct {
	from   string
	client *ses.SES
}

func NewSesMailer(region, from string) (*SesMailer, error) {
	if from == "" {
		return nil, errors.New("sender address must not be empty")
	}
	if region == "" {
		region = defaultRegion
	}
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &SesMailer{
		from:   from,
		client: ses.New(sess),
	}, nil
}

func (m *SesMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(msg.To)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String(charSet),
				Data:    aws.String(msg.Subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(charSet),
					Data:    aws.String(msg.Body),
				},
			},
		},
	})
	return err
}
