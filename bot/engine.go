package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"shopbot.GO/catalog"
	"shopbot.GO/config"
	"shopbot.GO/session"
	"shopbot.GO/stock"
)

// Engine drives the conversational ordering flow: navigation over the
// catalog tree annotated with the stock overlay, cart mutation under the
// per-user lock, the reservation and admin pending-input workflows.
// Dependencies are injected; the engine owns no global state.
type Engine struct {
	cfg      *config.Config
	tree     *catalog.Tree
	overlay  *stock.Overlay
	sessions *session.Store
	tr       Transport
	notifier *Notifier
	archive  *Archive
}

func NewEngine(cfg *config.Config, tree *catalog.Tree, overlay *stock.Overlay, sessions *session.Store, tr Transport, notifier *Notifier, archive *Archive) *Engine {
	return &Engine{
		cfg:      cfg,
		tree:     tree,
		overlay:  overlay,
		sessions: sessions,
		tr:       tr,
		notifier: notifier,
		archive:  archive,
	}
}

// Run consumes transport updates until ctx is done. Each update is handled
// on its own goroutine; per-user serialization is the session lock's job,
// not the dispatcher's.
func (e *Engine) Run(ctx context.Context) {
	updates := e.tr.Updates(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			go e.handleUpdate(u)
		}
	}
}

func (e *Engine) handleUpdate(u Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot: recovered from panic in update handler: %v", r)
		}
	}()

	switch {
	case u.Callback != nil:
		e.handleCallback(u.Callback)
	case u.Message != nil:
		e.handleMessage(u.Message)
	}
}

// --- inbound messages (commands and pending free text) ---

func (e *Engine) handleMessage(m *Message) {
	s := e.sessions.Get(m.From.ID, m.From.Username)

	switch {
	case strings.HasPrefix(m.Text, "/start"):
		e.sendWelcome(m.ChatID)
		return
	case strings.HasPrefix(m.Text, "/admin"):
		if !e.cfg.IsAdmin(m.From.ID) {
			return
		}
		text, menu := e.renderCategories(modeAdmin)
		if _, err := e.tr.SendMenu(m.ChatID, text, menu); err != nil {
			log.Printf("bot: send admin menu: %v", err)
		}
		return
	}

	p := s.Pending()
	switch p.Kind {
	case session.PendingCity:
		e.captureCity(s, m)
	case session.PendingReservation:
		e.captureReservationContact(s, m, p.Key)
	case session.PendingETA:
		e.captureAvailabilityDate(s, m, p.Key)
	default:
		// free text with nothing pending is a no-op
	}
}

func (e *Engine) sendWelcome(chatID int64) {
	menu := Menu{
		{{Label: "🛍 Каталог", Data: "home"}},
	}
	if e.cfg.CourierContact != "" {
		menu = append(menu, []Button{{Label: "ℹ️ Контакти адміністратора", URL: e.cfg.CourierContact}})
	}
	if _, err := e.tr.SendMenu(chatID, "Вітаю 👋\nЩо ви хочете замовити?", menu); err != nil {
		log.Printf("bot: send welcome: %v", err)
	}
}

func (e *Engine) captureCity(s *session.Session, m *Message) {
	city := strings.TrimSpace(m.Text)
	if city == "" {
		return
	}
	e.sessions.SetCity(s, city)
	s.ClearPending()
	text, menu := e.renderCategories(modeCustomer)
	if _, err := e.tr.SendMenu(m.ChatID, "📍 "+city+"\n\n"+text, menu); err != nil {
		log.Printf("bot: send categories: %v", err)
	}
}

// --- inbound menu taps ---

func (e *Engine) handleCallback(cb *Callback) {
	s := e.sessions.Get(cb.From.ID, cb.From.Username)

	// Tapping any menu button displaces a pending input mode. A displaced
	// reservation sends no notice.
	if p := s.Pending(); p.Kind != session.PendingNone {
		if p.Kind == session.PendingReservation {
			log.Printf("bot: user %d abandoned reservation for %s", s.UserID, p.Key.Token())
		}
		s.ClearPending()
	}

	data := cb.Data
	head := data
	if i := strings.IndexByte(data, ':'); i >= 0 {
		head = data[:i]
	}

	switch head {
	case "home":
		e.ack(cb, "")
		if s.City() == "" {
			e.askCity(s, cb)
			return
		}
		text, menu := e.renderCategories(modeCustomer)
		e.deliver(cb, text, menu, "")

	case "cat", "brand", "block", "nest":
		e.ack(cb, "")
		e.navigate(s, cb, data, modeCustomer)

	case "ci", "bi", "nf", "xf":
		e.handleAdd(s, cb, data)

	case "rsv":
		e.ack(cb, "")
		e.enterReservation(s, cb, strings.TrimPrefix(data, "rsv:"))

	case "cart":
		e.handleCart(s, cb, data)

	case "checkout":
		e.handleCheckout(s, cb)

	case "adm":
		e.handleAdminNav(s, cb, data)

	case "tog":
		e.handleToggle(s, cb, strings.TrimPrefix(data, "tog:"))

	default:
		e.ack(cb, "")
		e.recoverToHome(s, cb, "Цю кнопку вже не можна використати.")
	}
}

func (e *Engine) askCity(s *session.Session, cb *Callback) {
	s.SetPending(session.Pending{Kind: session.PendingCity})
	if err := e.tr.SendText(cb.ChatID, "📍 З якого ви міста? Напишіть у відповідь."); err != nil {
		log.Printf("bot: ask city: %v", err)
	}
}

func (e *Engine) ack(cb *Callback, toast string) {
	if err := e.tr.AnswerCallback(cb.ID, toast); err != nil {
		log.Printf("bot: answer callback: %v", err)
	}
}

// deliver prefers editing the tapped message in place and falls back to a
// new message when the transport refuses (photo-origin messages).
func (e *Engine) deliver(cb *Callback, text string, menu Menu, photo string) {
	if photo != "" {
		if _, err := e.tr.SendPhotoMenu(cb.ChatID, photo, text, menu); err == nil {
			return
		} else {
			log.Printf("bot: send photo menu: %v", err)
		}
	}
	err := e.tr.EditMenu(cb.ChatID, cb.MessageID, text, menu)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrCannotEdit) {
		log.Printf("bot: edit menu: %v", err)
	}
	if _, err := e.tr.SendMenu(cb.ChatID, text, menu); err != nil {
		log.Printf("bot: send menu: %v", err)
	}
}

// recoverToHome is the shared recovery path for malformed and stale tokens:
// short notice, then the nearest safe menu.
func (e *Engine) recoverToHome(s *session.Session, cb *Callback, notice string) {
	mode := modeCustomer
	if e.cfg.IsAdmin(s.UserID) && (strings.HasPrefix(cb.Data, "adm:") || strings.HasPrefix(cb.Data, "tog:")) {
		mode = modeAdmin
	}
	text, menu := e.renderCategories(mode)
	e.deliver(cb, notice+"\n\n"+text, menu, "")
}
