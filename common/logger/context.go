package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context carrying them.
// Relay handlers set them once per invocation so downstream clients log the
// thread and issue without threading the values through every call.
type LogFields struct {
	RelayID   *int64  // Snowflake id of one relay invocation
	ChannelID *string // Slack channel id
	ThreadTS  *string // Slack thread root timestamp
	IssueURL  *string // Issue link as supplied by the user
	Trigger   *string // "slash_command", "shortcut", "message_action", "view_submission"
	Component string  // e.g. "threadrelay.service.relay"
}

// WithLogFields merges fields into the context. Newer non-nil/non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RelayID != nil {
		result.RelayID = next.RelayID
	}
	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.ThreadTS != nil {
		result.ThreadTS = next.ThreadTS
	}
	if next.IssueURL != nil {
		result.IssueURL = next.IssueURL
	}
	if next.Trigger != nil {
		result.Trigger = next.Trigger
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v, for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
