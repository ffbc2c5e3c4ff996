package chat

import (
	"errors"

	"github.com/slack-go/slack"
)

// FetchErrorCode classifies a failed conversations.replies call. The set is
// closed: every failure maps to exactly one code.
type FetchErrorCode string

const (
	FetchErrorNone            FetchErrorCode = ""
	FetchErrorNotInChannel    FetchErrorCode = "not_in_channel"
	FetchErrorMissingScope    FetchErrorCode = "missing_scope"
	FetchErrorChannelNotFound FetchErrorCode = "channel_not_found"
	FetchErrorUnknown         FetchErrorCode = "unknown"
)

func classifyFetchError(err error) FetchErrorCode {
	if err == nil {
		return FetchErrorNone
	}

	var slackErr slack.SlackErrorResponse
	if !errors.As(err, &slackErr) {
		return FetchErrorUnknown
	}

	switch FetchErrorCode(slackErr.Err) {
	case FetchErrorNotInChannel, FetchErrorMissingScope, FetchErrorChannelNotFound:
		return FetchErrorCode(slackErr.Err)
	default:
		return FetchErrorUnknown
	}
}

// hint is the operator-facing explanation logged for each code.
func (c FetchErrorCode) hint() string {
	switch c {
	case FetchErrorNotInChannel:
		return "bot is not a member of the channel"
	case FetchErrorMissingScope:
		return "token is missing channels:history and/or groups:history"
	case FetchErrorChannelNotFound:
		return "channel not found, check the channel id"
	case FetchErrorNone:
		return ""
	default:
		return "unexpected slack error"
	}
}
