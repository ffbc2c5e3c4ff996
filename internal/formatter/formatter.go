// Package formatter renders chat threads as markdown suitable for an issue comment.
package formatter

import (
	"regexp"
	"strings"

	"basegraph.app/threadrelay/internal/model"
)

const unknownAuthor = "unknown"

// A single Replacer pass substitutes each entity once, left to right, so
// "&amp;amp;" decodes to "&amp;" rather than "&".
var entityReplacer = strings.NewReplacer(
	"&gt;", ">",
	"&lt;", "<",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

func DecodeEntities(text string) string {
	return entityReplacer.Replace(text)
}

// RewriteMentions replaces <@ID> tokens with @name for every id present in
// mentions. Tokens for unknown ids are left as they are.
func RewriteMentions(text string, mentions map[string]string) string {
	if len(mentions) == 0 {
		return text
	}
	return mentionPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := token[2 : len(token)-1]
		if name, ok := mentions[id]; ok {
			return "@" + name
		}
		return token
	})
}

// MentionIDs returns the distinct user ids referenced in text, in order of
// first appearance.
func MentionIDs(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	}
	return ids
}

func FormatMessage(msg model.ThreadMessage) string {
	text := DecodeEntities(msg.Text)
	text = RewriteMentions(text, msg.MentionMap)
	return "**" + authorName(msg) + "**: " + text
}

// FormatThread joins formatted messages with a blank line between them.
func FormatThread(messages []model.ThreadMessage) string {
	if len(messages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, FormatMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

func authorName(msg model.ThreadMessage) string {
	switch {
	case msg.AuthorDisplayName != "":
		return msg.AuthorDisplayName
	case msg.AuthorID != "":
		return msg.AuthorID
	default:
		return unknownAuthor
	}
}
