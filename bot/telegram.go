package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"shopbot.GO/media"
)

// Telegram implements Transport over the Bot API (long polling). Hand
// written JSON-over-HTTP client; the API surface this bot needs is five
// methods.
type Telegram struct {
	base   string
	client *http.Client
}

func NewTelegram(token string) *Telegram {
	return &Telegram{
		base: "https://api.telegram.org/bot" + token,
		// long poll timeout is 50s server-side, leave headroom
		client: &http.Client{Timeout: 65 * time.Second},
	}
}

type tgResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type tgUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgMessage struct {
	MessageID int     `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type tgCallback struct {
	ID      string     `json:"id"`
	From    tgUser     `json:"from"`
	Message *tgMessage `json:"message"`
	Data    string     `json:"data"`
}

type tgUpdate struct {
	UpdateID      int64       `json:"update_id"`
	Message       *tgMessage  `json:"message"`
	CallbackQuery *tgCallback `json:"callback_query"`
}

type tgButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type tgMarkup struct {
	InlineKeyboard [][]tgButton `json:"inline_keyboard"`
}

func markup(menu Menu) *tgMarkup {
	if len(menu) == 0 {
		return nil
	}
	m := &tgMarkup{}
	for _, row := range menu {
		var r []tgButton
		for _, b := range row {
			r = append(r, tgButton{Text: b.Label, CallbackData: b.Data, URL: b.URL})
		}
		m.InlineKeyboard = append(m.InlineKeyboard, r)
	}
	return m
}

func (t *Telegram) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var r tgResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("telegram: %s: decode response: %w", method, err)
	}
	if !r.OK {
		return nil, fmt.Errorf("telegram: %s: %s", method, r.Description)
	}
	return r.Result, nil
}

// Updates long-polls getUpdates and streams mapped events until ctx is
// done. Poll errors back off and retry; the channel closes on shutdown.
func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	out := make(chan Update)
	go func() {
		defer close(out)
		var offset int64
		for ctx.Err() == nil {
			raw, err := t.call(ctx, "getUpdates", map[string]interface{}{
				"offset":          offset,
				"timeout":         50,
				"allowed_updates": []string{"message", "callback_query"},
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("telegram: getUpdates: %v", err)
				time.Sleep(3 * time.Second)
				continue
			}
			var updates []tgUpdate
			if err := json.Unmarshal(raw, &updates); err != nil {
				log.Printf("telegram: getUpdates: %v", err)
				continue
			}
			for _, tu := range updates {
				if tu.UpdateID >= offset {
					offset = tu.UpdateID + 1
				}
				if u, ok := mapUpdate(tu); ok {
					select {
					case out <- u:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}

func mapUpdate(tu tgUpdate) (Update, bool) {
	switch {
	case tu.CallbackQuery != nil && tu.CallbackQuery.Message != nil:
		cb := tu.CallbackQuery
		return Update{Callback: &Callback{
			ID:        cb.ID,
			From:      User{ID: cb.From.ID, Username: cb.From.Username},
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
			Data:      cb.Data,
		}}, true
	case tu.Message != nil && tu.Message.From != nil:
		m := tu.Message
		return Update{Message: &Message{
			From:   User{ID: m.From.ID, Username: m.From.Username},
			ChatID: m.Chat.ID,
			Text:   m.Text,
		}}, true
	}
	return Update{}, false
}

func (t *Telegram) SendMenu(chatID int64, text string, menu Menu) (int, error) {
	payload := map[string]interface{}{"chat_id": chatID, "text": text}
	if m := markup(menu); m != nil {
		payload["reply_markup"] = m
	}
	raw, err := t.call(context.Background(), "sendMessage", payload)
	if err != nil {
		return 0, err
	}
	var msg tgMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (t *Telegram) SendText(chatID int64, text string) error {
	_, err := t.call(context.Background(), "sendMessage", map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

func (t *Telegram) EditMenu(chatID int64, messageID int, text string, menu Menu) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
	}
	if m := markup(menu); m != nil {
		payload["reply_markup"] = m
	}
	_, err := t.call(context.Background(), "editMessageText", payload)
	if err != nil && isEditRefusal(err) {
		return ErrCannotEdit
	}
	return err
}

// isEditRefusal reports whether the API refused to edit this message
// (photo messages have no text to edit).
func isEditRefusal(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "message can't be edited") ||
		strings.Contains(msg, "there is no text in the message to edit") ||
		strings.Contains(msg, "message to edit not found")
}

// SendPhotoMenu uploads a prepared photo with caption and keyboard.
func (t *Telegram) SendPhotoMenu(chatID int64, photo, caption string, menu Menu) (int, error) {
	jpeg, err := media.PreparePhoto(photo)
	if err != nil {
		return 0, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("chat_id", fmt.Sprintf("%d", chatID))
	_ = w.WriteField("caption", caption)
	if m := markup(menu); m != nil {
		mk, err := json.Marshal(m)
		if err != nil {
			return 0, err
		}
		_ = w.WriteField("reply_markup", string(mk))
	}
	part, err := w.CreateFormFile("photo", "photo.jpg")
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(jpeg); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, t.base+"/sendPhoto", &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	var r tgResponse
	if err := json.Unmarshal(rb, &r); err != nil {
		return 0, err
	}
	if !r.OK {
		return 0, fmt.Errorf("telegram: sendPhoto: %s", r.Description)
	}
	var msg tgMessage
	if err := json.Unmarshal(r.Result, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (t *Telegram) AnswerCallback(id, text string) error {
	payload := map[string]interface{}{"callback_query_id": id}
	if text != "" {
		payload["text"] = text
	}
	_, err := t.call(context.Background(), "answerCallbackQuery", payload)
	return err
}
