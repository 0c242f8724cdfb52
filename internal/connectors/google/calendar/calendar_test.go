package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/dself/internal/core/domain"
)

type stubTokens struct {
	authenticated bool
}

func (s stubTokens) GetToken(context.Context) (string, error) {
	if !s.authenticated {
		return "", domain.ErrAuthRequired
	}
	return "token", nil
}

func (s stubTokens) IsAuthenticated() bool { return s.authenticated }

const eventsJSON = `{
  "items": [
    {
      "id": "evt1",
      "status": "confirmed",
      "created": "2024-05-01T10:00:00.000Z",
      "updated": "2024-05-02T10:00:00.000Z",
      "summary": "Standup",
      "start": {"dateTime": "2024-05-03T09:00:00Z", "timeZone": "UTC"},
      "end": {"dateTime": "2024-05-03T09:15:00Z"},
      "organizer": {"email": "boss@example.com", "self": false},
      "attendees": [
        {"email": "me@example.com", "responseStatus": "accepted", "self": true},
        {"email": "boss@example.com", "organizer": true}
      ],
      "htmlLink": "https://calendar.example/evt1",
      "eventType": "default"
    },
    {
      "id": "evt2",
      "start": {"date": "2024-05-04"},
      "end": {"date": "2024-05-05"}
    }
  ]
}`

func newTestAdapter(t *testing.T, handler http.HandlerFunc, tokens stubTokens) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := New(domain.CalendarSettings{DataDir: t.TempDir()}, tokens,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	a.now = func() time.Time { return time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestExtract_QueriesWindow(t *testing.T) {
	var query map[string][]string
	var path string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eventsJSON))
	}, stubTokens{authenticated: true})

	events, err := a.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt1", events[0].Id)

	assert.Equal(t, "/calendars/primary/events", path)
	assert.Equal(t, []string{"2024-05-01T12:00:00Z"}, query["timeMin"])
	assert.Equal(t, []string{"2024-05-31T12:00:00Z"}, query["timeMax"])
	assert.Equal(t, []string{"true"}, query["singleEvents"])
	assert.Equal(t, []string{"startTime"}, query["orderBy"])
	assert.Equal(t, []string{"10"}, query["maxResults"])
}

func TestExtract_NotAuthenticated(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}, stubTokens{})

	_, err := a.Extract(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceUnreachable)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestExtract_Unauthorized(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Invalid Credentials"}}`))
	}, stubTokens{authenticated: true})

	_, err := a.Extract(context.Background())

	assert.ErrorIs(t, err, domain.ErrSourceUnreachable)
}

func TestExtract_ServerError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, stubTokens{authenticated: true})

	_, err := a.Extract(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSourceUnreachable)
}

func TestNew_Overrides(t *testing.T) {
	a := New(domain.CalendarSettings{CalendarID: "work", MaxResults: 50, DaysBack: 7}, stubTokens{})
	a.now = func() time.Time { return time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC) }

	from, to := a.Window()
	assert.Equal(t, time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, "work", a.cfg.CalendarID)
	assert.Equal(t, int64(50), a.cfg.MaxResults)

	spec := a.Spec()
	assert.Equal(t, "calendar_events", spec.Table)
	assert.Equal(t, domain.PersistUpsert, spec.Mode)
}

func TestEventToRecord_Full(t *testing.T) {
	savedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	e := &calendar.Event{
		Id:          "evt1",
		Status:      "confirmed",
		Created:     "2024-05-01T10:00:00.000Z",
		Updated:     "2024-05-02T10:00:00.000Z",
		Summary:     "Planning",
		Description: "Quarterly planning",
		Location:    "Room 1",
		Creator:     &calendar.EventCreator{Email: "me@example.com", Self: true},
		Organizer:   &calendar.EventOrganizer{Email: "boss@example.com", DisplayName: "Boss"}, //nolint:misspell // Google API field name
		Start:       &calendar.EventDateTime{DateTime: "2024-05-03T09:00:00Z", TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: "2024-05-03T10:00:00Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "me@example.com", ResponseStatus: "accepted", Self: true},
			nil,
			{Email: "boss@example.com", Organizer: true, Optional: true}, //nolint:misspell // Google API field name
		},
		Recurrence: []string{"RRULE:FREQ=WEEKLY"},
		HtmlLink:   "https://calendar.example/evt1",
		EventType:  "focusTime",
	}

	rec := EventToRecord(e, savedAt)

	assert.Equal(t, "evt1", rec.Key())
	assert.Equal(t, "2024-05-01T10:00:00.000Z", rec.CreatedAt)
	assert.Equal(t, "Planning", rec.Summary)
	require.NotNil(t, rec.Creator)
	assert.True(t, rec.Creator.Self)
	require.NotNil(t, rec.Organizer)
	assert.Equal(t, "Boss", rec.Organizer.DisplayName)
	assert.Equal(t, "2024-05-03T09:00:00Z", rec.StartTime.Value())
	assert.Equal(t, "UTC", rec.StartTime.TimeZone)
	require.Len(t, rec.Attendees, 2)
	assert.Equal(t, "accepted", rec.Attendees[0].ResponseStatus)
	assert.True(t, rec.Attendees[1].Organizer)
	assert.True(t, rec.Attendees[1].Optional)
	assert.Equal(t, []string{"RRULE:FREQ=WEEKLY"}, rec.Recurrence)
	assert.Equal(t, "focusTime", rec.EventType)
	assert.Equal(t, "2024-06-01T00:00:00.000000Z", rec.SavedAt)
}

func TestEventToRecord_Defaults(t *testing.T) {
	rec := EventToRecord(&calendar.Event{
		Id:    "evt2",
		Start: &calendar.EventDateTime{Date: "2024-05-04"},
	}, time.Now())

	assert.Equal(t, "No title", rec.Summary)
	assert.Equal(t, "default", rec.EventType)
	assert.Equal(t, "", rec.Description)
	assert.Equal(t, "", rec.Status)
	assert.Nil(t, rec.Creator)
	assert.Nil(t, rec.Organizer)
	assert.Nil(t, rec.Attendees)
	assert.Nil(t, rec.Recurrence)
	assert.Equal(t, "2024-05-04", rec.StartTime.Value())
	assert.Equal(t, domain.EventTime{}, rec.EndTime)
}
