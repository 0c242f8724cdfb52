package domain

// UnknownContact is recorded when a message has no resolvable sender or service.
const UnknownContact = "Unknown"

// IMessage is a message read from the device-local iMessage database.
type IMessage struct {
	Contact   string `json:"contact"`
	Text      string `json:"text"`
	Service   string `json:"service"`
	Account   string `json:"account"`
	IsFromMe  bool   `json:"is_from_me"`
	Timestamp string `json:"timestamp"`
	SavedAt   string `json:"saved_at"`
}

// Source implements Record.
func (IMessage) Source() SourceType { return SourceIMessage }

// Key implements Record. Device-local messages are append-only.
func (IMessage) Key() string { return "" }

// Sanitised implements Sanitisable.
func (m IMessage) Sanitised() IMessage {
	m.Text = Truncate(m.Text, LimitLong)
	m.Contact = Truncate(m.Contact, LimitShort)
	return m
}

// WhatsAppMessage is a message loaded from an exported WhatsApp file.
type WhatsAppMessage struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	FromJID     string `json:"from_jid"`
	FromName    string `json:"from_name"`
	ChatJID     string `json:"chat_jid"`
	ChatName    string `json:"chat_name"`
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	IsFromMe    bool   `json:"is_from_me"`
	IsGroup     bool   `json:"is_group"`
	SavedAt     string `json:"saved_at"`
}

// Source implements Record.
func (WhatsAppMessage) Source() SourceType { return SourceWhatsApp }

// Key implements Record.
func (m WhatsAppMessage) Key() string { return m.ID }

// Sanitised implements Sanitisable.
func (m WhatsAppMessage) Sanitised() WhatsAppMessage {
	m.Text = Truncate(m.Text, LimitLong)
	m.FromName = Truncate(m.FromName, LimitShort)
	m.ChatName = Truncate(m.ChatName, LimitShort)
	return m
}
