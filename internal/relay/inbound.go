package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sula8/telegram-support-bot/internal/telegram"
)

const restartButtonText = "🔄 Start/Restart"

func restartKeyboard() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard:       [][]telegram.KeyboardButton{{{Text: restartButtonText}}},
		ResizeKeyboard: true,
	}
}

// isStartMessage matches the /start command (with optional @botname suffix or
// arguments) and the restart keyboard button.
func isStartMessage(text string) bool {
	text = strings.TrimSpace(text)
	if text == restartButtonText {
		return true
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start"
}

// Inbound relays end-user messages into the staff chat, embedding the
// correlation tags in the forwarded header.
type Inbound struct {
	api    BotAPI
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewInbound(api BotAPI, cfg Config, logger *slog.Logger) *Inbound {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbound{
		api:    api,
		cfg:    cfg.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// SendWelcome greets the user and installs the restart keyboard. Nothing is
// forwarded to staff.
func (r *Inbound) SendWelcome(ctx context.Context, chatID int64) error {
	_, err := r.api.SendMessage(ctx, chatID, r.cfg.WelcomeMessage, telegram.SendOptions{
		ReplyMarkup: restartKeyboard(),
	})
	return err
}

func formatUserInfo(u *telegram.User) string {
	name := telegram.DisplayName(u)
	username := ""
	if u != nil {
		username = strings.TrimSpace(u.Username)
	}
	if username != "" && !strings.HasPrefix(name, "@") {
		if name != "" {
			name += " "
		}
		name += "(@" + username + ")"
	}
	if name == "" {
		name = "unknown"
	}
	return name
}

func attachmentSummary(msg *telegram.Message) string {
	var label string
	switch DetectKind(msg) {
	case KindPhoto:
		label = "[Photo]"
	case KindVideo:
		label = "[Video]"
	case KindDocument:
		label = fmt.Sprintf("[File: %s]", strings.TrimSpace(msg.Document.FileName))
	case KindVoice:
		label = "[Voice message]"
	case KindAudio:
		title := strings.TrimSpace(msg.Audio.Title)
		if title == "" {
			title = "Unknown title"
		}
		label = fmt.Sprintf("[Audio: %s]", title)
	case KindAnimation:
		label = "[Animation]"
	case KindSticker:
		label = "[Sticker]"
	case KindVideoNote:
		label = "[Video note]"
	default:
		label = "[Attachment]"
	}
	out := "Attachments: " + label
	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		out += " with caption: " + caption
	}
	return out
}

// Handle relays one user message into the staff chat and confirms receipt
// back to the user.
func (r *Inbound) Handle(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return nil
	}
	if isStartMessage(msg.Text) {
		return r.SendWelcome(ctx, msg.Chat.ID)
	}

	sentAt := r.now().UTC()
	if msg.Date > 0 {
		sentAt = time.Unix(msg.Date, 0).UTC()
	}

	var header strings.Builder
	fmt.Fprintf(&header, "[%s]\n", sentAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&header, "From: %s %s\n", formatUserInfo(msg.From), FormatUserTag(msg.From.ID))
	header.WriteString(FormatMessageTag(msg.MessageID) + "\n")

	// A user replying to a delivered staff message threads the forward back
	// under that staff message.
	staffReplyTo := int64(0)
	if msg.ReplyTo != nil {
		if id, ok := DecodeStaffReplyID(msg.ReplyTo.TextOrCaption()); ok {
			staffReplyTo = id
			fmt.Fprintf(&header, "↩️ Reply to staff message #%d\n", id)
		} else {
			fmt.Fprintf(&header, "↩️ Reply to message #%d\n", msg.ReplyTo.MessageID)
		}
	}

	kind := DetectKind(msg)
	var body string
	limit := CaptionLimit
	switch kind {
	case KindText:
		body = "Message: " + msg.Text
		limit = TextLimit
	case KindUnknown:
		body = ""
	default:
		body = attachmentSummary(msg)
	}

	forwarded, err := Resend(ctx, r.api, r.cfg.StaffChatID, msg,
		ClampWithHeader(header.String(), body, limit),
		telegram.SendOptions{ReplyToMessageID: staffReplyTo})
	if err != nil {
		return fmt.Errorf("relay message from user %d to staff chat: %w", msg.From.ID, err)
	}
	r.logger.Info("inbound_relayed",
		"from_user_id", msg.From.ID,
		"message_id", msg.MessageID,
		"kind", string(kind),
		"staff_message_id", forwarded.MessageID,
	)

	if _, err := r.api.SendMessage(ctx, msg.Chat.ID, r.cfg.ConfirmationMessage, telegram.SendOptions{
		ReplyMarkup: restartKeyboard(),
	}); err != nil {
		// The request reached staff; tell them the user is unreachable.
		notice := fmt.Sprintf("⚠️ Could not confirm receipt to user %s: %v", FormatUserTag(msg.From.ID), err)
		if _, noticeErr := r.api.SendMessage(ctx, r.cfg.StaffChatID, notice, telegram.SendOptions{}); noticeErr != nil {
			r.logger.Warn("inbound_notice_error", "error", noticeErr.Error())
		}
		return fmt.Errorf("confirm receipt to user %d: %w", msg.From.ID, err)
	}
	return nil
}
