package domain

// Defaults for fields the calendar omits.
const (
	DefaultEventType    = "default"
	DefaultEventSummary = "No title"
)

// Attendee is a person attached to a calendar event. The creator and
// organiser of an event share this shape.
type Attendee struct {
	ID             string `json:"id,omitempty"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"` //nolint:misspell // Google API field name
	Self           bool   `json:"self,omitempty"`
	Optional       bool   `json:"optional,omitempty"`
}

// EventTime is either an all-day date or a date-time.
type EventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Value returns the date-time if set, otherwise the date.
func (t EventTime) Value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// CalendarEvent is a single (possibly expanded recurring) calendar event.
//
// Creator, Organizer, Attendees and Recurrence are nil when the calendar
// returned no data, so consumers can tell "absent" from "empty".
type CalendarEvent struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Creator     *Attendee  `json:"creator"`
	Organizer   *Attendee  `json:"organizer"`
	StartTime   EventTime  `json:"start_time"`
	EndTime     EventTime  `json:"end_time"`
	Attendees   []Attendee `json:"attendees"`
	Recurrence  []string   `json:"recurrence"`
	HTMLLink    string     `json:"html_link"`
	EventType   string     `json:"event_type"`
	SavedAt     string     `json:"saved_at"`
}

// Source implements Record.
func (CalendarEvent) Source() SourceType { return SourceCalendar }

// Key implements Record.
func (e CalendarEvent) Key() string { return e.ID }

// Sanitised implements Sanitisable.
func (e CalendarEvent) Sanitised() CalendarEvent {
	e.Summary = Truncate(e.Summary, LimitShort)
	e.Description = Truncate(e.Description, LimitLong)
	e.Location = Truncate(e.Location, LimitShort)
	return e
}
