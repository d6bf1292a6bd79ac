package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Telegram Bot API client. It re-sends attachments by
// file_id only and never downloads or re-uploads media.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type RequestError struct {
	StatusCode  int
	ErrorCode   int
	Description string
	Body        string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "telegram request failed"
	}
	desc := strings.TrimSpace(e.Description)
	if desc != "" {
		if e.StatusCode > 0 {
			return fmt.Sprintf("telegram http %d: %s", e.StatusCode, desc)
		}
		return "telegram: " + desc
	}
	body := strings.TrimSpace(e.Body)
	if e.StatusCode > 0 {
		if body != "" {
			return fmt.Sprintf("telegram http %d: %s", e.StatusCode, body)
		}
		return fmt.Sprintf("telegram http %d", e.StatusCode)
	}
	if body != "" {
		return "telegram: " + body
	}
	return "telegram request failed"
}

func (c *Client) postJSON(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var out apiResponse
	_ = json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.OK {
		return nil, &RequestError{
			StatusCode:  resp.StatusCode,
			ErrorCode:   out.ErrorCode,
			Description: out.Description,
			Body:        strings.TrimSpace(string(raw)),
		}
	}
	return out.Result, nil
}

func (c *Client) postMessage(ctx context.Context, method string, payload any) (*Message, error) {
	result, err := c.postJSON(ctx, method, payload)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return &msg, nil
}

func (c *Client) GetMe(ctx context.Context) (*User, error) {
	result, err := c.postJSON(ctx, "getMe", struct{}{})
	if err != nil {
		return nil, err
	}
	var me User
	if err := json.Unmarshal(result, &me); err != nil {
		return nil, fmt.Errorf("telegram getMe: decode result: %w", err)
	}
	return &me, nil
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// GetUpdates long-polls for new updates and returns them together with the
// offset to use on the next call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	result, err := c.postJSON(reqCtx, "getUpdates", getUpdatesRequest{
		Offset:  offset,
		Timeout: secs,
	})
	if err != nil {
		return nil, offset, err
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, offset, fmt.Errorf("telegram getUpdates: decode result: %w", err)
	}
	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// IsPollTimeout reports whether err is the benign timeout a long poll ends
// with when no updates arrived.
func IsPollTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "client.timeout exceeded")
}

// SendOptions carries the optional parts of a send call.
type SendOptions struct {
	ReplyToMessageID int64
	ReplyMarkup      *ReplyKeyboardMarkup
}

type sendMessageRequest struct {
	ChatID           int64                `json:"chat_id"`
	Text             string               `json:"text"`
	ReplyToMessageID int64                `json:"reply_to_message_id,omitempty"`
	ReplyMarkup      *ReplyKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		text = "(empty)"
	}
	return c.postMessage(ctx, "sendMessage", sendMessageRequest{
		ChatID:           chatID,
		Text:             text,
		ReplyToMessageID: opts.ReplyToMessageID,
		ReplyMarkup:      opts.ReplyMarkup,
	})
}

type sendChatActionRequest struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	_, err := c.postJSON(ctx, "sendChatAction", sendChatActionRequest{
		ChatID: chatID,
		Action: action,
	})
	return err
}

// sendMedia re-sends a previously uploaded file by file_id. The payload field
// name matches the API method (sendPhoto wants "photo", and so on).
func (c *Client) sendMedia(ctx context.Context, method, field string, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("telegram %s: missing file_id", method)
	}
	payload := map[string]any{
		"chat_id": chatID,
		field:     fileID,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	if opts.ReplyToMessageID > 0 {
		payload["reply_to_message_id"] = opts.ReplyToMessageID
	}
	if opts.ReplyMarkup != nil {
		payload["reply_markup"] = opts.ReplyMarkup
	}
	return c.postMessage(ctx, method, payload)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendPhoto", "photo", chatID, fileID, caption, opts)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendVideo", "video", chatID, fileID, caption, opts)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendDocument", "document", chatID, fileID, caption, opts)
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendVoice", "voice", chatID, fileID, caption, opts)
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendAudio", "audio", chatID, fileID, caption, opts)
}

func (c *Client) SendAnimation(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendAnimation", "animation", chatID, fileID, caption, opts)
}

// SendSticker carries no caption; correlation rides on the reply thread.
func (c *Client) SendSticker(ctx context.Context, chatID int64, fileID string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendSticker", "sticker", chatID, fileID, "", opts)
}

// SendVideoNote carries no caption either.
func (c *Client) SendVideoNote(ctx context.Context, chatID int64, fileID string, opts SendOptions) (*Message, error) {
	return c.sendMedia(ctx, "sendVideoNote", "video_note", chatID, fileID, "", opts)
}

type forwardMessageRequest struct {
	ChatID     int64 `json:"chat_id"`
	FromChatID int64 `json:"from_chat_id"`
	MessageID  int64 `json:"message_id"`
}

// ForwardMessage is the fallback for content kinds without a dedicated
// re-send method. The forwarded copy cannot carry a caption.
func (c *Client) ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*Message, error) {
	if messageID == 0 {
		return nil, fmt.Errorf("telegram forwardMessage: missing message_id")
	}
	return c.postMessage(ctx, "forwardMessage", forwardMessageRequest{
		ChatID:     chatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})
}
