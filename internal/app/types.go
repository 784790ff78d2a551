package app

// AttachmentKind distinguishes the two accepted tier-document payloads.
type AttachmentKind string

const (
	AttachmentDocument AttachmentKind = "document"
	AttachmentPhoto    AttachmentKind = "photo"
)

// Attachment is a user-submitted tier document, referenced by its Telegram
// file identifier.
type Attachment struct {
	Kind   AttachmentKind
	FileID string
}

// MsgRef identifies an inline-keyboard message so a service can edit it in
// place instead of posting a new one.
type MsgRef struct {
	ChatID    int64
	MessageID int
}
