package notify

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/roomie-match/matchcore/internal/domain"
	"github.com/roomie-match/matchcore/internal/ratelimit"
)

// sesClient is the subset of the SES v2 client SESNotifier depends on,
// satisfied by *ses.Client and by a fake in tests.
type sesClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier dispatches matched/expired notifications through AWS SES,
// fanned out over a bounded worker pool (spec §4.3), grounded on the
// source system's boto3 SES client plus fire-and-forget thread dispatch.
type SESNotifier struct {
	client      sesClient
	directory   RecipientDirectory
	pool        *Pool
	limiters    ratelimit.CategoryLimiters
	fromAddress string
	matchURL    string
	logger      *slog.Logger
}

// NewSESNotifier builds a ready SESNotifier. The pool and limiters are
// shared across all sends from this notifier.
func NewSESNotifier(client sesClient, directory RecipientDirectory, pool *Pool,
	limiters ratelimit.CategoryLimiters, fromAddress, frontendURL string, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{
		client:      client,
		directory:   directory,
		pool:        pool,
		limiters:    limiters,
		fromAddress: fromAddress,
		matchURL:    frontendURL + "/match",
		logger:      logger,
	}
}

func (n *SESNotifier) NotifyMatched(ctx context.Context, recipient, partner domain.UserID, compatibilityScore float64) {
	n.pool.Submit(func(ctx context.Context) {
		if err := ratelimit.CheckLimit(n.limiters, "matched"); err != nil {
			n.logFailure(recipient, err)
			return
		}
		to, err := n.directory.Lookup(ctx, recipient)
		if err != nil {
			n.logFailure(recipient, err)
			return
		}
		partnerInfo, err := n.directory.Lookup(ctx, partner)
		if err != nil {
			n.logFailure(recipient, err)
			return
		}
		html, text := renderMatched(matchedTemplateData{
			Nickname:           to.Nickname,
			PartnerNickname:    partnerInfo.Nickname,
			CompatibilityScore: compatibilityScore,
			MatchURL:           n.matchURL,
		})
		n.send(ctx, to.Email, "You've been matched!", html, text)
	})
}

func (n *SESNotifier) NotifyExpired(ctx context.Context, recipient domain.UserID) {
	n.pool.Submit(func(ctx context.Context) {
		if err := ratelimit.CheckLimit(n.limiters, "expired"); err != nil {
			n.logFailure(recipient, err)
			return
		}
		to, err := n.directory.Lookup(ctx, recipient)
		if err != nil {
			n.logFailure(recipient, err)
			return
		}
		html, text := renderExpired(expiredTemplateData{Nickname: to.Nickname})
		n.send(ctx, to.Email, "Your listing has expired", html, text)
	})
}

func (n *SESNotifier) send(ctx context.Context, to, subject, html, text string) {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
			},
		},
	}
	if _, err := n.client.SendEmail(ctx, input); err != nil {
		if n.logger != nil {
			n.logger.Error("ses send failed", "to", to, "error", err)
		}
		return
	}
	if n.logger != nil {
		n.logger.Info("ses send succeeded", "to", to)
	}
}

func (n *SESNotifier) logFailure(recipient domain.UserID, err error) {
	if n.logger != nil {
		n.logger.Warn("notification dropped", "recipient", recipient, "error", err)
	}
}

var _ Notifier = (*SESNotifier)(nil)
