package calendar

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// EventToRecord converts a Google Calendar event to a CalendarEvent.
// Absent scalars become empty strings; an absent creator, organiser,
// attendee list or recurrence stays nil.
func EventToRecord(e *calendar.Event, savedAt time.Time) domain.CalendarEvent {
	rec := domain.CalendarEvent{
		ID:          e.Id,
		Status:      e.Status,
		CreatedAt:   e.Created,
		UpdatedAt:   e.Updated,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   eventTime(e.Start),
		EndTime:     eventTime(e.End),
		HTMLLink:    e.HtmlLink,
		EventType:   e.EventType,
		SavedAt:     domain.FormatTimestamp(savedAt),
	}
	if rec.Summary == "" {
		rec.Summary = domain.DefaultEventSummary
	}
	if rec.EventType == "" {
		rec.EventType = domain.DefaultEventType
	}

	if e.Creator != nil {
		rec.Creator = &domain.Attendee{
			ID:          e.Creator.Id,
			Email:       e.Creator.Email,
			DisplayName: e.Creator.DisplayName,
			Self:        e.Creator.Self,
		}
	}
	if org := e.Organizer; org != nil { //nolint:misspell // Google API field name
		rec.Organizer = &domain.Attendee{
			ID:          org.Id,
			Email:       org.Email,
			DisplayName: org.DisplayName,
			Self:        org.Self,
		}
	}

	if len(e.Attendees) > 0 {
		rec.Attendees = make([]domain.Attendee, 0, len(e.Attendees))
		for _, at := range e.Attendees {
			if at == nil {
				continue
			}
			rec.Attendees = append(rec.Attendees, domain.Attendee{
				ID:             at.Id,
				Email:          at.Email,
				DisplayName:    at.DisplayName,
				ResponseStatus: at.ResponseStatus,
				Organizer:      at.Organizer, //nolint:misspell // Google API field name
				Self:           at.Self,
				Optional:       at.Optional,
			})
		}
	}
	if len(e.Recurrence) > 0 {
		rec.Recurrence = append([]string(nil), e.Recurrence...)
	}

	return rec
}

func eventTime(t *calendar.EventDateTime) domain.EventTime {
	if t == nil {
		return domain.EventTime{}
	}
	return domain.EventTime{
		Date:     t.Date,
		DateTime: t.DateTime,
		TimeZone: t.TimeZone,
	}
}
