package relay

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrTagNotFound means a message carries no decodable user tag. Staff replies
// hitting this are ignored rather than misrouted.
var ErrTagNotFound = errors.New("no user tag found in message")

// Platform content ceilings, in runes.
const (
	CaptionLimit = 1024
	TextLimit    = 4096
)

var (
	userTagPattern       = regexp.MustCompile(`#ID(\d+)`)
	messageTagPattern    = regexp.MustCompile(`#MSG(\d+)`)
	staffReplyTagPattern = regexp.MustCompile(`#admsg(\d+)`)

	// The bot's own delivery confirmations are decodable too, so staff can
	// reply to a confirmation instead of the forwarded message.
	sentConfirmationPattern = regexp.MustCompile(`Message sent to user #ID(\d+)`)
	sentMessageIDPattern    = regexp.MustCompile(`message #(\d+)`)
)

func FormatUserTag(userID int64) string {
	return fmt.Sprintf("#ID%d", userID)
}

func FormatMessageTag(messageID int64) string {
	return fmt.Sprintf("#MSG%d", messageID)
}

// FormatStaffReplyTag is appended to content delivered to users; a user
// replying to it threads back to the originating staff message.
func FormatStaffReplyTag(staffMessageID int64) string {
	return fmt.Sprintf("\n\n#admsg%d", staffMessageID)
}

func firstID(pattern *regexp.Regexp, text string) (int64, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// DecodeUserID extracts the originating user identifier from a forwarded
// message's text or caption. It returns ErrTagNotFound when no valid tag is
// present.
func DecodeUserID(text string) (int64, error) {
	if id, ok := firstID(userTagPattern, text); ok {
		return id, nil
	}
	if id, ok := firstID(sentConfirmationPattern, text); ok {
		return id, nil
	}
	return 0, ErrTagNotFound
}

// DecodeMessageID extracts the user-side message ID used to thread staff
// replies back under the user's original message.
func DecodeMessageID(text string) (int64, bool) {
	if id, ok := firstID(messageTagPattern, text); ok {
		return id, true
	}
	return firstID(sentMessageIDPattern, text)
}

// DecodeStaffReplyID extracts the staff message ID from the hidden tag
// carried by a staff reply delivered to a user.
func DecodeStaffReplyID(text string) (int64, bool) {
	return firstID(staffReplyTagPattern, text)
}

// ClampWithHeader joins header and body, truncating body so the result stays
// within limit runes. The header carries the routing tags and is never cut.
func ClampWithHeader(header, body string, limit int) string {
	return clampJoin(header, body, "", limit)
}

// ClampWithTag joins body and a trailing tag, truncating body so the result
// stays within limit runes. The tag is never cut.
func ClampWithTag(body, tag string, limit int) string {
	return clampJoin("", body, tag, limit)
}

func clampJoin(head, body, tail string, limit int) string {
	if limit <= 0 {
		return head + body + tail
	}
	fixed := len([]rune(head)) + len([]rune(tail))
	if fixed >= limit {
		// Body cannot fit at all; routing correctness wins over content.
		return head + tail
	}
	budget := limit - fixed
	runes := []rune(body)
	if len(runes) <= budget {
		return head + body + tail
	}
	truncated := strings.TrimRight(string(runes[:budget-1]), " \n")
	return head + truncated + "…" + tail
}
