package domain

import "time"

// Kind classifies a storefront submission.
type Kind string

const (
	KindOrder  Kind = "order"
	KindCredit Kind = "credit"
)

// Submission is the storefront payload. Every field is optional and is read
// with storefront truthiness (see Value).
type Submission struct {
	Name          Value `json:"name"`
	Phone         Value `json:"phone"`
	Product       Value `json:"product"`
	Qty           Value `json:"qty"`
	Total         Value `json:"total"`
	Note          Value `json:"note"`
	Type          Value `json:"type"`
	Email         Value `json:"email"`
	Amount        Value `json:"amount"`
	ProofImageURL Value `json:"proofImageUrl"`
}

// PushMessage is one entry of a LINE push request.
type PushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PushPayload is the LINE Messaging API push request body.
type PushPayload struct {
	To       string        `json:"to"`
	Messages []PushMessage `json:"messages"`
}

// NewTextPush builds a push payload carrying a single text message.
func NewTextPush(to, text string) PushPayload {
	return PushPayload{To: to, Messages: []PushMessage{{Type: "text", Text: text}}}
}

// MailMessage is the content of a secondary email notification.
type MailMessage struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Envelope is what a secondary channel delivers: addressing plus content.
type Envelope struct {
	Recipients []string
	From       string
	ReplyTo    string
	Message    MailMessage
	Source     string
	Contact    string
}

// QueuedMail is the document handed to an external mail worker, either as a
// database row or as a broker message.
type QueuedMail struct {
	ID         string         `json:"id"`
	Recipients []string       `json:"recipients"`
	From       string         `json:"from"`
	ReplyTo    string         `json:"replyTo"`
	Message    MailMessage    `json:"message"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// DeliveryStatus is the result of one secondary delivery attempt
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)
