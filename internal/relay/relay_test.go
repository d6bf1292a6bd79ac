package relay

import (
	"context"
	"sync"

	"github.com/sula8/telegram-support-bot/internal/telegram"
)

const testBotID = int64(424242)

type sentCall struct {
	method     string
	chatID     int64
	fileID     string
	text       string
	fromChatID int64
	messageID  int64
	opts       telegram.SendOptions
}

// fakeAPI records every platform call and answers with bot-authored messages
// carrying increasing message IDs, like the real API would.
type fakeAPI struct {
	mu            sync.Mutex
	calls         []sentCall
	nextMessageID int64
	failMethods   map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextMessageID: 1000, failMethods: map[string]error{}}
}

func (f *fakeAPI) record(call sentCall) (*telegram.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failMethods[call.method]; err != nil {
		return nil, err
	}
	f.nextMessageID++
	f.calls = append(f.calls, call)
	return &telegram.Message{
		MessageID: f.nextMessageID,
		Chat:      &telegram.Chat{ID: call.chatID},
		From:      &telegram.User{ID: testBotID, IsBot: true},
	}, nil
}

func (f *fakeAPI) callsByMethod(method string) []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) SendMessage(ctx context.Context, chatID int64, text string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendMessage", chatID: chatID, text: text, opts: opts})
}

func (f *fakeAPI) SendChatAction(ctx context.Context, chatID int64, action string) error {
	_, err := f.record(sentCall{method: "sendChatAction", chatID: chatID, text: action})
	return err
}

func (f *fakeAPI) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendPhoto", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendVideo(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendVideo", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendDocument(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendDocument", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendVoice(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendVoice", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendAudio(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendAudio", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendAnimation(ctx context.Context, chatID int64, fileID, caption string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendAnimation", chatID: chatID, fileID: fileID, text: caption, opts: opts})
}

func (f *fakeAPI) SendSticker(ctx context.Context, chatID int64, fileID string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendSticker", chatID: chatID, fileID: fileID, opts: opts})
}

func (f *fakeAPI) SendVideoNote(ctx context.Context, chatID int64, fileID string, opts telegram.SendOptions) (*telegram.Message, error) {
	return f.record(sentCall{method: "sendVideoNote", chatID: chatID, fileID: fileID, opts: opts})
}

func (f *fakeAPI) ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*telegram.Message, error) {
	return f.record(sentCall{method: "forwardMessage", chatID: chatID, fromChatID: fromChatID, messageID: messageID})
}

func userMessage(userID int64, messageID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: messageID,
		Date:      1756684800, // 2025-09-01 00:00:00 UTC
		Chat:      &telegram.Chat{ID: userID, Type: "private"},
		From:      &telegram.User{ID: userID, FirstName: "Alice", Username: "alice"},
		Text:      text,
	}
}
