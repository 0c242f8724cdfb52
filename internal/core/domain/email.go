package domain

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// Body MIME types captured from a message part tree.
const (
	MIMETextPlain = "text/plain"
	MIMETextHTML  = "text/html"
)

// HeaderAllowList lists the lower-cased headers kept on an EmailMessage.
var HeaderAllowList = []string{"from", "to", "subject", "date", "cc", "bcc", "reply-to"}

// EmailMessage is a single mailbox message.
type EmailMessage struct {
	ID           string            `json:"id"`
	ThreadID     string            `json:"thread_id"`
	LabelIDs     []string          `json:"label_ids"`
	Snippet      string            `json:"snippet"`
	HistoryID    string            `json:"history_id"`
	InternalDate *int64            `json:"internal_date"`
	Headers      map[string]string `json:"headers"`
	MIMEType     string            `json:"mime_type"`
	BodyText     string            `json:"body_text"`
	BodyHTML     string            `json:"body_html"`
	SavedAt      string            `json:"saved_at"`
}

// Source implements Record.
func (EmailMessage) Source() SourceType { return SourceGmail }

// Key implements Record.
func (m EmailMessage) Key() string { return m.ID }

// Sanitised implements Sanitisable. Email fields carry no storage bounds.
func (m EmailMessage) Sanitised() EmailMessage { return m }

// Body returns the text and html variants of the message body.
func (m EmailMessage) Body() EmailBody {
	return EmailBody{Text: m.BodyText, HTML: m.BodyHTML}
}

// EmailBody holds the plain-text and html variants of a message body.
// Either may be empty.
type EmailBody struct {
	Text string
	HTML string
}

// Header is a single raw message header.
type Header struct {
	Name  string
	Value string
}

// FilterHeaders keeps the allow-listed headers, keyed by lower-cased name.
// A repeated header keeps its last value.
func FilterHeaders(headers []Header) map[string]string {
	out := make(map[string]string)
	for _, h := range headers {
		name := strings.ToLower(h.Name)
		for _, allowed := range HeaderAllowList {
			if name == allowed {
				out[name] = h.Value
				break
			}
		}
	}
	return out
}

// MessagePart is a node in a message's MIME part tree.
type MessagePart struct {
	// MIMEType is the part's content type.
	MIMEType string

	// Data is the base64url-encoded body of the part, empty when the part
	// carries no inline data.
	Data string

	// Parts are the ordered child parts of a multipart node.
	Parts []MessagePart
}

// ExtractBody walks the tree depth-first, root included, and returns the
// first text/plain and first text/html payloads found. Later matches are
// ignored.
func (p MessagePart) ExtractBody() EmailBody {
	var body EmailBody
	var foundText, foundHTML bool

	var walk func(part MessagePart)
	walk = func(part MessagePart) {
		if foundText && foundHTML {
			return
		}
		if part.Data != "" {
			switch part.MIMEType {
			case MIMETextPlain:
				if !foundText {
					body.Text = DecodePartData(part.Data)
					foundText = true
				}
			case MIMETextHTML:
				if !foundHTML {
					body.HTML = DecodePartData(part.Data)
					foundHTML = true
				}
			}
		}
		for _, child := range part.Parts {
			walk(child)
		}
	}
	walk(p)

	return body
}

// DecodePartData decodes base64url part data, padded or unpadded. Data that
// does not decode to valid UTF-8 is returned unchanged.
func DecodePartData(data string) string {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding} {
		decoded, err := enc.DecodeString(data)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	return data
}
