package email

import "time"

// Envelope holds the parsed envelope data from an IMAP message.
type Envelope struct {
	MessageID string
	Subject   string
	From      string
	Date      time.Time
	UID       uint32
}

// Message holds an envelope together with the extracted text body.
type Message struct {
	Envelope Envelope
	TextBody string
}
