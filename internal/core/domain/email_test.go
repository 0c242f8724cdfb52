package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_Multipart(t *testing.T) {
	root := MessagePart{
		MIMEType: "multipart/alternative",
		Parts: []MessagePart{
			{MIMEType: MIMETextPlain, Data: b64("Hi")},
			{MIMEType: MIMETextHTML, Data: b64("<p>Hi</p>")},
		},
	}

	body := root.ExtractBody()
	assert.Equal(t, "Hi", body.Text)
	assert.Equal(t, "<p>Hi</p>", body.HTML)
}

func TestExtractBody_RootPart(t *testing.T) {
	root := MessagePart{MIMEType: MIMETextPlain, Data: b64("single part")}

	body := root.ExtractBody()
	assert.Equal(t, "single part", body.Text)
	assert.Empty(t, body.HTML)
}

func TestExtractBody_FirstMatchWins(t *testing.T) {
	root := MessagePart{
		MIMEType: "multipart/mixed",
		Parts: []MessagePart{
			{
				MIMEType: "multipart/alternative",
				Parts: []MessagePart{
					{MIMEType: MIMETextPlain, Data: b64("first")},
				},
			},
			{MIMEType: MIMETextPlain, Data: b64("second")},
			{MIMEType: MIMETextHTML, Data: b64("<b>only</b>")},
		},
	}

	body := root.ExtractBody()
	assert.Equal(t, "first", body.Text)
	assert.Equal(t, "<b>only</b>", body.HTML)
}

func TestExtractBody_SkipsEmptyData(t *testing.T) {
	root := MessagePart{
		MIMEType: "multipart/mixed",
		Parts: []MessagePart{
			{MIMEType: MIMETextPlain},
			{MIMEType: MIMETextPlain, Data: b64("filled")},
		},
	}

	assert.Equal(t, "filled", root.ExtractBody().Text)
}

func TestExtractBody_NoTextParts(t *testing.T) {
	root := MessagePart{
		MIMEType: "multipart/mixed",
		Parts:    []MessagePart{{MIMEType: "image/png", Data: b64("png")}},
	}

	assert.Equal(t, EmailBody{}, root.ExtractBody())
}

func TestDecodePartData(t *testing.T) {
	assert.Equal(t, "héllo?", DecodePartData(base64.URLEncoding.EncodeToString([]byte("héllo?"))))
	assert.Equal(t, "héllo?", DecodePartData(base64.RawURLEncoding.EncodeToString([]byte("héllo?"))))
	assert.Equal(t, "not base64!", DecodePartData("not base64!"))
}

func TestFilterHeaders(t *testing.T) {
	headers := []Header{
		{Name: "From", Value: "a@example.com"},
		{Name: "To", Value: "b@example.com"},
		{Name: "Subject", Value: "hello"},
		{Name: "X-Mailer", Value: "ignored"},
		{Name: "Received", Value: "ignored"},
		{Name: "Reply-To", Value: "c@example.com"},
		{Name: "subject", Value: "last wins"},
	}

	got := FilterHeaders(headers)
	assert.Equal(t, map[string]string{
		"from":     "a@example.com",
		"to":       "b@example.com",
		"subject":  "last wins",
		"reply-to": "c@example.com",
	}, got)
}

func TestEmailMessage_Record(t *testing.T) {
	m := EmailMessage{ID: "m1", BodyText: "t", BodyHTML: "h"}

	assert.Equal(t, SourceGmail, m.Source())
	assert.Equal(t, "m1", m.Key())
	assert.Equal(t, m, m.Sanitised())
	assert.Equal(t, EmailBody{Text: "t", HTML: "h"}, m.Body())
}
