package relay

import (
	"context"
	"strings"

	"github.com/sula8/telegram-support-bot/internal/telegram"
)

// Kind discriminates the platform's attachment taxonomy.
type Kind string

const (
	KindText      Kind = "text"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindDocument  Kind = "document"
	KindVoice     Kind = "voice"
	KindAudio     Kind = "audio"
	KindAnimation Kind = "animation"
	KindSticker   Kind = "sticker"
	KindVideoNote Kind = "video_note"
	KindUnknown   Kind = "unknown"
)

// DetectKind inspects the message payload. Animation must win over document:
// the API sets both fields on GIF messages.
func DetectKind(msg *telegram.Message) Kind {
	switch {
	case msg == nil:
		return KindUnknown
	case msg.Animation != nil:
		return KindAnimation
	case msg.Sticker != nil:
		return KindSticker
	case msg.VideoNote != nil:
		return KindVideoNote
	case len(msg.Photo) > 0:
		return KindPhoto
	case msg.Video != nil:
		return KindVideo
	case msg.Voice != nil:
		return KindVoice
	case msg.Audio != nil:
		return KindAudio
	case msg.Document != nil:
		return KindDocument
	case strings.TrimSpace(msg.Text) != "":
		return KindText
	default:
		return KindUnknown
	}
}

// BotAPI is the slice of the platform client the relay consumes.
type BotAPI interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts telegram.SendOptions) (*telegram.Message, error)
	SendChatAction(ctx context.Context, chatID int64, action string) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendVoice(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendAudio(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendAnimation(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error)
	SendSticker(ctx context.Context, chatID int64, fileID string, opts telegram.SendOptions) (*telegram.Message, error)
	SendVideoNote(ctx context.Context, chatID int64, fileID string, opts telegram.SendOptions) (*telegram.Message, error)
	ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*telegram.Message, error)
}

// largestPhoto picks the biggest size variant; the API lists sizes ascending.
func largestPhoto(sizes []telegram.PhotoSize) telegram.PhotoSize {
	if len(sizes) == 0 {
		return telegram.PhotoSize{}
	}
	return sizes[len(sizes)-1]
}

// Resend delivers src's content to chatID, preserving the attachment
// reference unchanged. text is the full message text for text messages and
// the caption for captionable media. Kinds whose send method carries no
// caption get the text as a threaded follow-up message, and unrecognized
// kinds fall back to a plain forward, so the tag is never dropped.
func Resend(ctx context.Context, api BotAPI, chatID int64, src *telegram.Message, text string, opts telegram.SendOptions) (*telegram.Message, error) {
	switch DetectKind(src) {
	case KindPhoto:
		return api.SendPhoto(ctx, chatID, largestPhoto(src.Photo).FileID, text, opts)
	case KindVideo:
		return api.SendVideo(ctx, chatID, src.Video.FileID, text, opts)
	case KindDocument:
		return api.SendDocument(ctx, chatID, src.Document.FileID, text, opts)
	case KindVoice:
		return api.SendVoice(ctx, chatID, src.Voice.FileID, text, opts)
	case KindAudio:
		return api.SendAudio(ctx, chatID, src.Audio.FileID, text, opts)
	case KindAnimation:
		return api.SendAnimation(ctx, chatID, src.Animation.FileID, text, opts)
	case KindSticker:
		sent, err := api.SendSticker(ctx, chatID, src.Sticker.FileID, opts)
		if err != nil {
			return nil, err
		}
		return sent, sendFollowUp(ctx, api, chatID, sent, text, opts)
	case KindVideoNote:
		sent, err := api.SendVideoNote(ctx, chatID, src.VideoNote.FileID, opts)
		if err != nil {
			return nil, err
		}
		return sent, sendFollowUp(ctx, api, chatID, sent, text, opts)
	case KindText:
		return api.SendMessage(ctx, chatID, text, opts)
	default:
		sent, err := api.ForwardMessage(ctx, chatID, src.Chat.ID, src.MessageID)
		if err != nil {
			return nil, err
		}
		return sent, sendFollowUp(ctx, api, chatID, sent, text, opts)
	}
}

// sendFollowUp delivers text that could not ride as a caption, threaded under
// the message just sent so the correlation survives.
func sendFollowUp(ctx context.Context, api BotAPI, chatID int64, sent *telegram.Message, text string, opts telegram.SendOptions) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	followOpts := telegram.SendOptions{ReplyMarkup: opts.ReplyMarkup}
	if sent != nil {
		followOpts.ReplyToMessageID = sent.MessageID
	}
	_, err := api.SendMessage(ctx, chatID, text, followOpts)
	return err
}
