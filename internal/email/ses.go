package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/seeran-grades/seeran-backend/internal/logging"
)

const charsetUTF8 = "UTF-8"

// sesAPI is the part of the SES v2 client the sender needs
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers activation codes through Amazon SES
type SESSender struct {
	client  sesAPI
	from    string
	codeTTL time.Duration
}

func NewSESSender(client sesAPI, from string, codeTTL time.Duration) *SESSender {
	return &SESSender{client: client, from: from, codeTTL: codeTTL}
}

// NewSESSenderFromConfig builds the client from an AWS config, usually from config.LoadDefaultConfig
func NewSESSenderFromConfig(cfg aws.Config, from string, codeTTL time.Duration) *SESSender {
	return NewSESSender(sesv2.NewFromConfig(cfg), from, codeTTL)
}

// SendOTPEmail sends code to the given address. Errors carry the SES message.
func (s *SESSender) SendOTPEmail(ctx context.Context, to, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	msg, err := renderOTP(code, minutes(s.codeTTL))
	if err != nil {
		logger.Error("failed to render otp email", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charsetUTF8)},
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charsetUTF8)},
				},
			},
		},
	})
	if err != nil {
		logger.Error("failed to send otp email", "email", to, "error", err)
		return err
	}

	logger.Info("otp email sent", "email", to, "message_id", aws.ToString(out.MessageId))
	return nil
}

func minutes(d time.Duration) int {
	m := int(d / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
