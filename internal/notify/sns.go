// internal/notify/sns.go
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"quotation-relay/internal/common/logger"
	"quotation-relay/internal/models"
)

// SNSPublisher is the part of the SNS client used here.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes outcome signals to a topic, e.g. for a mobile push
// subscription. Processing indicators are not published.
type SNSNotifier struct {
	client   SNSPublisher
	topicARN string
	app      string
	log      logger.Logger
}

func NewSNSNotifier(client SNSPublisher, topicARN, app string, log logger.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		app:      app,
		log:      logger.ForComponent(log, "notify-sns"),
	}
}

func (n *SNSNotifier) Notify(ctx context.Context, s models.Signal) {
	if s.Kind == models.SignalProcessingStarted || s.Kind == models.SignalProcessingCleared {
		return
	}

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(Title(n.app, s)),
		Message:  aws.String(Message(s)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"signal": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(s.Kind)),
			},
		},
	})
	if err != nil {
		n.log.Warn("sns publish failed", map[string]interface{}{
			"signal": string(s.Kind),
			"error":  err.Error(),
		})
	}
}
