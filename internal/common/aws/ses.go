// internal/common/aws/ses.go
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// NewSESClient builds an SES client from a resolved config.
func NewSESClient(cfg aws.Config) *ses.Client {
	return ses.NewFromConfig(cfg)
}
