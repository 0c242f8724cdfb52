// Package calendar reads recent events from a Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/dself/internal/connectors/google"
	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/core/ports/driven"
	"github.com/custodia-labs/dself/internal/logger"
)

// Persistence targets.
const (
	Table      = "calendar_events"
	FilePrefix = "calendar_events"
)

// Ensure Adapter implements the source port.
var _ driven.SourceAdapter[*calendar.Event, domain.CalendarEvent] = (*Adapter)(nil)

// Adapter is the calendar source.
type Adapter struct {
	cfg     domain.CalendarSettings
	tokens  driven.TokenProvider
	opts    []option.ClientOption
	limiter *google.RateLimiter
	now     func() time.Time
}

// New creates the adapter. Extra client options are passed to the Calendar
// service.
func New(cfg domain.CalendarSettings, tokens driven.TokenProvider, opts ...option.ClientOption) *Adapter {
	if cfg.CalendarID == "" {
		cfg.CalendarID = domain.DefaultCalendarID
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = domain.DefaultCalendarMax
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = domain.DefaultCalendarDaysBack
	}
	return &Adapter{
		cfg:     cfg,
		tokens:  tokens,
		opts:    opts,
		limiter: google.NewRateLimiter(google.ServiceCalendar),
		now:     time.Now,
	}
}

// Spec implements driven.SourceAdapter.
func (a *Adapter) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Type:       domain.SourceCalendar,
		Table:      Table,
		FilePrefix: FilePrefix,
		DataDir:    a.cfg.DataDir,
		Mode:       domain.PersistUpsert,
	}
}

// Window returns the time range searched, ending now.
func (a *Adapter) Window() (from, to time.Time) {
	to = a.now().UTC()
	from = to.AddDate(0, 0, -a.cfg.DaysBack)
	return from, to
}

// Extract lists single (expanded) events in the window, ordered by start.
func (a *Adapter) Extract(ctx context.Context) ([]*calendar.Event, error) {
	if a.tokens == nil || !a.tokens.IsAuthenticated() {
		return nil, fmt.Errorf("%w: calendar: %w", domain.ErrSourceUnreachable, domain.ErrAuthRequired)
	}

	svc, err := google.NewCalendarService(ctx, google.NewTokenSource(ctx, a.tokens), a.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar service: %w", domain.ErrSourceUnreachable, err)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	from, to := a.Window()
	logger.Debug("calendar: listing %s from %s to %s", a.cfg.CalendarID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	resp, err := svc.Events.List(a.cfg.CalendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(a.cfg.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		a.limiter.Observe(err)
		if google.IsAuthFailure(err) {
			return nil, fmt.Errorf("%w: list events: %w", domain.ErrSourceUnreachable, google.WrapError(err))
		}
		return nil, fmt.Errorf("list events: %w", google.WrapError(err))
	}

	events := make([]*calendar.Event, 0, len(resp.Items))
	for _, e := range resp.Items {
		if e != nil && e.Id != "" {
			events = append(events, e)
		}
	}
	return events, nil
}

// Normalise implements driven.SourceAdapter.
func (a *Adapter) Normalise(e *calendar.Event, savedAt time.Time) domain.CalendarEvent {
	return EventToRecord(e, savedAt)
}
