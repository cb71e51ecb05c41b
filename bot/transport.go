package bot

import (
	"context"
	"errors"
)

// ErrCannotEdit is returned by EditMenu when the transport cannot edit the
// original message in place (e.g. it carried a photo). Callers fall back to
// sending a new message.
var ErrCannotEdit = errors.New("transport: message cannot be edited")

// User identifies the sender of an inbound event.
type User struct {
	ID       int64
	Username string
}

// Button is one selectable menu entry: a label plus either an action token
// or an external URL.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Menu is rows of buttons, rendered as an inline keyboard.
type Menu [][]Button

// Message is an inbound free-text message (or command).
type Message struct {
	From   User
	ChatID int64
	Text   string
}

// Callback is an inbound menu tap carrying its action token.
type Callback struct {
	ID        string
	From      User
	ChatID    int64
	MessageID int
	Data      string
}

// Update is one inbound event; exactly one field is set.
type Update struct {
	Message  *Message
	Callback *Callback
}

// Transport is the chat boundary the engine talks through. Events arrive
// serially per conversation but concurrently across users; all engine
// suspension happens here.
type Transport interface {
	// Updates streams inbound events until ctx is done.
	Updates(ctx context.Context) <-chan Update

	// SendMenu sends a new message with an attached menu, returning the
	// message ID for later in-place edits.
	SendMenu(chatID int64, text string, menu Menu) (int, error)

	// SendPhotoMenu sends a photo with caption and menu.
	SendPhotoMenu(chatID int64, photo, caption string, menu Menu) (int, error)

	// EditMenu replaces an earlier message's text and menu in place.
	// Returns ErrCannotEdit when the original cannot be edited.
	EditMenu(chatID int64, messageID int, text string, menu Menu) error

	// SendText sends a plain message with no menu.
	SendText(chatID int64, text string) error

	// AnswerCallback acknowledges a menu tap, optionally with a short
	// toast shown to the user.
	AnswerCallback(id, text string) error
}
