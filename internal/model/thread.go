package model

// ThreadMessage is a single chat message from a fetched thread.
// MentionMap holds every id resolved for the thread, not just the ids this
// message references, so mentions of other participants rewrite correctly.
type ThreadMessage struct {
	AuthorID          string
	AuthorDisplayName string
	Text              string
	MentionMap        map[string]string
}

// ThreadReference identifies a thread by channel and root timestamp.
// Timestamps are opaque "<sec>.<6-digit frac>" strings and are never parsed as floats.
type ThreadReference struct {
	ChannelID        string
	ThreadTimestamp  string
	MessageTimestamp string // message the link pointed at; equals ThreadTimestamp for root links
}

type RelayResult struct {
	CommentURL string
}
