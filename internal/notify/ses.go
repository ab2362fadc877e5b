// internal/notify/ses.go
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/models"
)

// SESSender is the part of the SES client used here.
type SESSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier emails error signals so failures are not lost when nobody is
// watching the log.
type SESNotifier struct {
	client SESSender
	from   string
	to     []string
	app    string
	log    logger.Logger
}

func NewSESNotifier(client SESSender, from string, to []string, app string, log logger.Logger) *SESNotifier {
	return &SESNotifier{
		client: client,
		from:   from,
		to:     to,
		app:    app,
		log:    logger.ForComponent(log, "notify-ses"),
	}
}

func (n *SESNotifier) Notify(ctx context.Context, s models.Signal) {
	if s.Kind != models.SignalError {
		return
	}

	body := Message(s)
	if s.TransactionID != "" {
		body += "\nTransaction: " + s.TransactionID
	}
	if s.Code != "" {
		body += "\nCode: " + s.Code
	}

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &types.Destination{ToAddresses: n.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(Title(n.app, s))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.log.Warn("ses send failed", map[string]interface{}{
			"signal": string(s.Kind),
			"error":  err.Error(),
		})
	}
}
