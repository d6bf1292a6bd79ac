package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sula8/telegram-support-bot/internal/telegram"
)

const noUserTagNotice = "⚠️ Could not find the user ID in the message. " +
	"Make sure you're replying to a forwarded user message."

// Outbound routes staff replies back to the originating user, recovering the
// destination from the tags embedded in the replied-to message.
type Outbound struct {
	api    BotAPI
	cfg    Config
	logger *slog.Logger
}

func NewOutbound(api BotAPI, cfg Config, logger *slog.Logger) *Outbound {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbound{
		api:    api,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Handle processes one staff-chat message that replies to a bot-authored
// message. Every failure is contained: tag decode misses and delivery errors
// surface as visible notices in the staff chat, never as a crash or a send
// to the wrong user.
func (r *Outbound) Handle(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.ReplyTo == nil {
		return nil
	}

	refText := msg.ReplyTo.TextOrCaption()
	userID, err := DecodeUserID(refText)
	if err != nil {
		if !errors.Is(err, ErrTagNotFound) {
			return err
		}
		r.logger.Warn("outbound_tag_not_found", "staff_message_id", msg.MessageID, "reply_to_message_id", msg.ReplyTo.MessageID)
		if _, sendErr := r.api.SendMessage(ctx, r.cfg.StaffChatID, noUserTagNotice, telegram.SendOptions{}); sendErr != nil {
			r.logger.Warn("outbound_notice_error", "error", sendErr.Error())
		}
		return nil
	}
	// Threading back under the user's original message is best effort; the
	// user ID alone is enough to deliver.
	originalMessageID, _ := DecodeMessageID(refText)

	if err := r.api.SendChatAction(ctx, userID, "typing"); err != nil {
		r.logger.Debug("outbound_chat_action_error", "user_id", userID, "error", err.Error())
	}

	kind := DetectKind(msg)
	limit := CaptionLimit
	body := msg.Caption
	if kind == KindText {
		limit = TextLimit
		body = msg.Text
	}
	text := ClampWithTag(body, FormatStaffReplyTag(msg.MessageID), limit)

	sent, err := Resend(ctx, r.api, userID, msg, text, telegram.SendOptions{
		ReplyToMessageID: originalMessageID,
		ReplyMarkup:      restartKeyboard(),
	})
	if err != nil {
		r.logger.Warn("outbound_delivery_error", "user_id", userID, "staff_message_id", msg.MessageID, "error", err.Error())
		notice := fmt.Sprintf("⚠️ Error sending message to user: %v", err)
		if _, sendErr := r.api.SendMessage(ctx, r.cfg.StaffChatID, notice, telegram.SendOptions{}); sendErr != nil {
			r.logger.Warn("outbound_notice_error", "error", sendErr.Error())
		}
		return nil
	}
	r.logger.Info("outbound_relayed",
		"user_id", userID,
		"staff_message_id", msg.MessageID,
		"kind", string(kind),
		"delivered_message_id", sent.MessageID,
	)

	confirmation := fmt.Sprintf("✅ Message sent to user %s (message #%d)", FormatUserTag(userID), msg.MessageID)
	if _, err := r.api.SendMessage(ctx, r.cfg.StaffChatID, confirmation, telegram.SendOptions{
		ReplyToMessageID: msg.MessageID,
	}); err != nil {
		r.logger.Warn("outbound_confirmation_error", "error", err.Error())
	}
	return nil
}
