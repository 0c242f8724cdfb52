// Package gmail reads the most recent messages from a Gmail mailbox.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/dself/internal/connectors/google"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Persistence targets.
const (
	Table      = "gmail_emails"
	FilePrefix = "recent_emails"
)

// Ensure Adapter implements the source port.
var _ driven.SourceAdapter[*gmail.Message, domain.EmailMessage] = (*Adapter)(nil)

// Adapter is the email source.
type Adapter struct {
	cfg     domain.GmailSettings
	tokens  driven.TokenProvider
	opts    []option.ClientOption
	limiter *google.RateLimiter
}

// New creates the adapter. Extra client options are passed to the Gmail
// service.
func New(cfg domain.GmailSettings, tokens driven.TokenProvider, opts ...option.ClientOption) *Adapter {
	if cfg.UserID == "" {
		cfg.UserID = domain.DefaultGmailUserID
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = domain.DefaultGmailMax
	}
	return &Adapter{
		cfg:     cfg,
		tokens:  tokens,
		opts:    opts,
		limiter: google.NewRateLimiter(google.ServiceGmail),
	}
}

// Spec implements driven.SourceAdapter.
func (a *Adapter) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Type:       domain.SourceGmail,
		Table:      Table,
		FilePrefix: FilePrefix,
		DataDir:    a.cfg.DataDir,
		Mode:       domain.PersistUpsert,
	}
}

// Extract lists the newest message ids and fetches each in full. A message
// that cannot be fetched is logged and skipped.
func (a *Adapter) Extract(ctx context.Context) ([]*gmail.Message, error) {
	if a.tokens == nil || !a.tokens.IsAuthenticated() {
		return nil, fmt.Errorf("%w: gmail: %w", domain.ErrSourceUnreachable, domain.ErrAuthRequired)
	}

	svc, err := google.NewGmailService(ctx, google.NewTokenSource(ctx, a.tokens), a.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: gmail service: %w", domain.ErrSourceUnreachable, err)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	list, err := svc.Users.Messages.List(a.cfg.UserID).
		MaxResults(a.cfg.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		a.limiter.Observe(err)
		if google.IsAuthFailure(err) {
			return nil, fmt.Errorf("%w: list messages: %w", domain.ErrSourceUnreachable, google.WrapError(err))
		}
		return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
	}

	logger.Debug("gmail: %d message ids listed", len(list.Messages))

	messages := make([]*gmail.Message, 0, len(list.Messages))
	for i, ref := range list.Messages {
		if ref == nil || ref.Id == "" {
			continue
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		msg, err := svc.Users.Messages.Get(a.cfg.UserID, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			a.limiter.Observe(err)
			logger.Warn("gmail: skipping message %s: %v", ref.Id, google.WrapError(err))
			continue
		}
		logger.Debug("gmail: fetched %d/%d (%s)", i+1, len(list.Messages), ref.Id)
		messages = append(messages, msg)
	}

	return messages, nil
}

// Normalise implements driven.SourceAdapter.
func (a *Adapter) Normalise(msg *gmail.Message, savedAt time.Time) domain.EmailMessage {
	return MessageToRecord(msg, savedAt)
}
