package bot

import (
	"log"
	"strings"
	"time"

	"shopbot.GO/catalog"
	"shopbot.GO/session"
)

// Every admin entry point re-checks the allow-list: admin-looking tokens
// can arrive from stale keyboards in anyone's chat history.

func (e *Engine) handleAdminNav(s *session.Session, cb *Callback, data string) {
	if !e.cfg.IsAdmin(s.UserID) {
		e.ack(cb, "⛔ Доступ заборонено")
		return
	}
	e.ack(cb, "")

	rest := strings.TrimPrefix(data, "adm")
	rest = strings.TrimPrefix(rest, ":")
	if rest == "" || rest == "home" {
		text, menu := e.renderCategories(modeAdmin)
		e.deliver(cb, text, menu, "")
		return
	}
	e.navigate(s, cb, rest, modeAdmin)
}

// handleToggle flips one leaf's availability. Available → unavailable asks
// for the supply date first; unavailable → available is immediate.
func (e *Engine) handleToggle(s *session.Session, cb *Callback, tok string) {
	if !e.cfg.IsAdmin(s.UserID) {
		e.ack(cb, "⛔ Доступ заборонено")
		return
	}

	key, err := catalog.ParseKey(tok)
	if err != nil {
		e.ack(cb, "")
		e.recoverToHome(s, cb, "Кнопка застаріла.")
		return
	}
	leaf, err := e.tree.Resolve(key)
	if err != nil {
		e.ack(cb, "")
		e.recoverToHome(s, cb, "Товар більше недоступний — каталог оновився.")
		return
	}

	entry := e.overlay.Get(tok)
	if entry.Available {
		s.SetPending(session.Pending{Kind: session.PendingETA, Key: key})
		e.ack(cb, "")
		text := "🚫 «" + leaf.Name + "» буде позначено як відсутній.\n" +
			"Вкажіть дату постачання у форматі РРРР-ММ-ДД (наприклад 2026-01-20)."
		if err := e.tr.SendText(cb.ChatID, text); err != nil {
			log.Printf("bot: send: %v", err)
		}
		return
	}

	e.overlay.Set(tok, true, nil)
	if err := e.overlay.FlushIfDirty(); err != nil {
		log.Printf("bot: overlay flush: %v", err)
	}
	e.ack(cb, "✅ Знову в наявності")
	e.navigate(s, cb, parentNav(key), modeAdmin)
}

// captureAvailabilityDate consumes the admin's pending date reply. A failed
// parse keeps the pending mode so the admin can retry; the overlay is
// written only on success.
func (e *Engine) captureAvailabilityDate(s *session.Session, m *Message, key catalog.Key) {
	if !e.cfg.IsAdmin(s.UserID) {
		s.ClearPending()
		return
	}

	eta, err := time.Parse("2006-01-02", strings.TrimSpace(m.Text))
	if err != nil {
		text := "⚠️ Не схоже на дату. Формат: РРРР-ММ-ДД (наприклад 2026-01-20). Спробуйте ще раз."
		if err := e.tr.SendText(m.ChatID, text); err != nil {
			log.Printf("bot: send: %v", err)
		}
		return
	}

	e.overlay.Set(key.Token(), false, &eta)
	if err := e.overlay.FlushIfDirty(); err != nil {
		log.Printf("bot: overlay flush: %v", err)
	}
	s.ClearPending()

	name := key.Token()
	if leaf, err := e.tree.Resolve(key); err == nil {
		name = leaf.Name
	}
	text := "🚫 «" + name + "» позначено як відсутній, постачання " + eta.Format("02.01.2006") + "."
	if err := e.tr.SendText(m.ChatID, text); err != nil {
		log.Printf("bot: send: %v", err)
	}
}
