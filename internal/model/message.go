package model

import "time"

// TimeLayout is the fixed-width ISO-8601 layout used for every stored or
// compared timestamp. Fixed width keeps lexical order equal to chronological
// order, which the database sort and mirror file names both rely on.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	// SourceLocal identifies messages that originate from the local store.
	SourceLocal = "local"

	// DefaultAuthor is used when a writer does not identify themselves.
	DefaultAuthor = "Anonymous"
)

// Message is a single board entry, local or mirrored.
type Message struct {
	// ID is the local row id. Zero for mirror-origin messages.
	ID int64 `json:"id,omitempty"`

	// Content is the message body. Never empty.
	Content string `json:"content"`

	// Author is the display name of the writer.
	Author string `json:"author"`

	// Timestamp is the ISO-8601 creation time, assigned at the durable write.
	Timestamp string `json:"timestamp"`

	// Source is "local" or the "owner/name" of the mirror the entry was read from.
	Source string `json:"source"`

	// RemoteRef points at the mirrored copy of the message, when one exists.
	RemoteRef string `json:"github_url,omitempty"`
}

// Now returns the current UTC time formatted with TimeLayout.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}
