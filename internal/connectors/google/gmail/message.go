package gmail

import (
	"strconv"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/dself/internal/core/domain"
)

// MessageToRecord converts a full-format Gmail message to an EmailMessage.
func MessageToRecord(msg *gmail.Message, savedAt time.Time) domain.EmailMessage {
	rec := domain.EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: append([]string{}, msg.LabelIds...),
		Snippet:  msg.Snippet,
		Headers:  map[string]string{},
		SavedAt:  domain.FormatTimestamp(savedAt),
	}
	if msg.HistoryId != 0 {
		rec.HistoryID = strconv.FormatUint(msg.HistoryId, 10)
	}
	if msg.InternalDate != 0 {
		date := msg.InternalDate
		rec.InternalDate = &date
	}

	if msg.Payload == nil {
		return rec
	}

	headers := make([]domain.Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		if h != nil {
			headers = append(headers, domain.Header{Name: h.Name, Value: h.Value})
		}
	}
	rec.Headers = domain.FilterHeaders(headers)
	rec.MIMEType = msg.Payload.MimeType

	body := PartTree(msg.Payload).ExtractBody()
	rec.BodyText = body.Text
	rec.BodyHTML = body.HTML

	return rec
}

// PartTree converts the API's part tree to a domain.MessagePart.
func PartTree(p *gmail.MessagePart) domain.MessagePart {
	if p == nil {
		return domain.MessagePart{}
	}
	part := domain.MessagePart{MIMEType: p.MimeType}
	if p.Body != nil {
		part.Data = p.Body.Data
	}
	if len(p.Parts) > 0 {
		part.Parts = make([]domain.MessagePart, 0, len(p.Parts))
		for _, child := range p.Parts {
			if child != nil {
				part.Parts = append(part.Parts, PartTree(child))
			}
		}
	}
	return part
}
