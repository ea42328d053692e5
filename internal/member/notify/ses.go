package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/kelseyhightower/envconfig"
)

const sesCharSet = "UTF-8"

// SESNotifierConfig is read from MEMBERD_SES_* environment variables. AWS
// credentials come from the usual SDK chain (env, profile, instance role).
type SESNotifierConfig struct {
	From   string `default:"noreply@crewdesk.io"`
	Region string `default:"us-east-1"`
}

// SESNotifier sends invitation mail through Amazon SES.
type SESNotifier struct {
	config SESNotifierConfig
	ses    *ses.SES
}

func NewSESNotifier() (*SESNotifier, error) {
	var config SESNotifierConfig
	if err := envconfig.Process("MEMBERD_SES", &config); err != nil {
		return nil, err
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.Region),
	})
	if err != nil {
		return nil, err
	}

	return &SESNotifier{
		config: config,
		ses:    ses.New(sess),
	}, nil
}

func (n *SESNotifier) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.config.From),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(msg.To)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String(sesCharSet),
				Data:    aws.String(msg.Subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(sesCharSet),
					Data:    aws.String(msg.HTML),
				},
				Text: &ses.Content{
					Charset: aws.String(sesCharSet),
					Data:    aws.String(msg.Text),
				},
			},
		},
	}

	if _, err := n.ses.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("notify: ses send failed: %w", err)
	}
	return nil
}
