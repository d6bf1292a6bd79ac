package relay

import (
	"context"
	"testing"

	"github.com/sula8/telegram-support-bot/internal/telegram"
)

func TestDetectKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msg  *telegram.Message
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"empty", &telegram.Message{}, KindUnknown},
		{"text", &telegram.Message{Text: "hi"}, KindText},
		{"whitespace_text", &telegram.Message{Text: "   "}, KindUnknown},
		{"photo", &telegram.Message{Photo: []telegram.PhotoSize{{FileID: "p"}}}, KindPhoto},
		{"video", &telegram.Message{Video: &telegram.Video{FileID: "v"}}, KindVideo},
		{"document", &telegram.Message{Document: &telegram.Document{FileID: "d"}}, KindDocument},
		{"voice", &telegram.Message{Voice: &telegram.Voice{FileID: "vo"}}, KindVoice},
		{"audio", &telegram.Message{Audio: &telegram.Audio{FileID: "a"}}, KindAudio},
		{"sticker", &telegram.Message{Sticker: &telegram.Sticker{FileID: "s"}}, KindSticker},
		{"video_note", &telegram.Message{VideoNote: &telegram.VideoNote{FileID: "vn"}}, KindVideoNote},
		{
			// GIFs carry both animation and document payloads.
			"animation_wins_over_document",
			&telegram.Message{
				Animation: &telegram.Animation{FileID: "gif"},
				Document:  &telegram.Document{FileID: "gif-doc"},
			},
			KindAnimation,
		},
		{
			"media_wins_over_caption_text",
			&telegram.Message{Photo: []telegram.PhotoSize{{FileID: "p"}}, Caption: "look"},
			KindPhoto,
		},
	}
	for _, tc := range cases {
		if got := DetectKind(tc.msg); got != tc.want {
			t.Fatalf("DetectKind(%s) mismatch: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestResendDispatchesByKind(t *testing.T) {
	t.Parallel()

	src := &telegram.Message{
		MessageID: 7,
		Chat:      &telegram.Chat{ID: 555},
	}

	cases := []struct {
		name       string
		set        func(m *telegram.Message)
		wantMethod string
		wantFileID string
	}{
		{"photo", func(m *telegram.Message) { m.Photo = []telegram.PhotoSize{{FileID: "f1"}, {FileID: "f2"}} }, "sendPhoto", "f2"},
		{"video", func(m *telegram.Message) { m.Video = &telegram.Video{FileID: "f"} }, "sendVideo", "f"},
		{"document", func(m *telegram.Message) { m.Document = &telegram.Document{FileID: "f"} }, "sendDocument", "f"},
		{"voice", func(m *telegram.Message) { m.Voice = &telegram.Voice{FileID: "f"} }, "sendVoice", "f"},
		{"audio", func(m *telegram.Message) { m.Audio = &telegram.Audio{FileID: "f"} }, "sendAudio", "f"},
		{"animation", func(m *telegram.Message) { m.Animation = &telegram.Animation{FileID: "f"} }, "sendAnimation", "f"},
		{"sticker", func(m *telegram.Message) { m.Sticker = &telegram.Sticker{FileID: "f"} }, "sendSticker", "f"},
		{"video_note", func(m *telegram.Message) { m.VideoNote = &telegram.VideoNote{FileID: "f"} }, "sendVideoNote", "f"},
	}
	for _, tc := range cases {
		api := newFakeAPI()
		msg := *src
		tc.set(&msg)
		if _, err := Resend(context.Background(), api, 999, &msg, "caption", telegram.SendOptions{}); err != nil {
			t.Fatalf("Resend(%s) error = %v", tc.name, err)
		}
		calls := api.callsByMethod(tc.wantMethod)
		if len(calls) != 1 {
			t.Fatalf("%s calls mismatch: got %d want 1", tc.wantMethod, len(calls))
		}
		if calls[0].fileID != tc.wantFileID {
			t.Fatalf("%s file id mismatch: got %q want %q", tc.name, calls[0].fileID, tc.wantFileID)
		}
		if calls[0].chatID != 999 {
			t.Fatalf("%s chat mismatch: got %d want 999", tc.name, calls[0].chatID)
		}
	}
}

func TestResendUnknownKindFallsBackToForward(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	// A poll, contact, or any future attachment kind: no mapping exists.
	src := &telegram.Message{
		MessageID: 7,
		Chat:      &telegram.Chat{ID: 555},
	}
	if _, err := Resend(context.Background(), api, 999, src, "tagged text", telegram.SendOptions{}); err != nil {
		t.Fatalf("Resend() error = %v", err)
	}

	forwards := api.callsByMethod("forwardMessage")
	if len(forwards) != 1 {
		t.Fatalf("forwardMessage calls mismatch: got %d want 1", len(forwards))
	}
	if forwards[0].fromChatID != 555 || forwards[0].messageID != 7 {
		t.Fatalf("forward source mismatch: got (%d, %d) want (555, 7)", forwards[0].fromChatID, forwards[0].messageID)
	}

	// The tag text follows as a reply since a forward cannot carry a caption.
	msgs := api.callsByMethod("sendMessage")
	if len(msgs) != 1 {
		t.Fatalf("sendMessage calls mismatch: got %d want 1", len(msgs))
	}
	if msgs[0].text != "tagged text" {
		t.Fatalf("follow-up text mismatch: got %q", msgs[0].text)
	}
	if msgs[0].opts.ReplyToMessageID == 0 {
		t.Fatalf("follow-up reply_to mismatch: got 0 want forwarded message id")
	}
}
