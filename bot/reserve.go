package bot

import (
	"log"
	"time"

	"github.com/google/uuid"

	"shopbot.GO/catalog"
	"shopbot.GO/session"
)

// enterReservation handles a tap on an unavailable leaf's reservation
// token.
func (e *Engine) enterReservation(s *session.Session, cb *Callback, tok string) {
	key, err := catalog.ParseKey(tok)
	if err != nil {
		e.recoverToHome(s, cb, "Кнопка застаріла.")
		return
	}
	leaf, err := e.tree.Resolve(key)
	if err != nil {
		e.recoverToHome(s, cb, "Товар більше недоступний — каталог оновився.")
		return
	}
	e.startReservation(s, cb, key, leaf)
}

// startReservation binds the session's next free-text message to this leaf.
// Navigating away before replying abandons the reservation silently (one
// log line, no notice).
func (e *Engine) startReservation(s *session.Session, cb *Callback, key catalog.Key, leaf catalog.Leaf) {
	s.SetPending(session.Pending{Kind: session.PendingReservation, Key: key})

	text := "😕 «" + leaf.Name + "» зараз немає в наявності."
	if entry := e.overlay.Get(key.Token()); entry.ETA != nil {
		text += "\n📦 Очікуване постачання: " + entry.ETA.Format("02.01.2006")
	}
	text += "\n\nЗалиште контакт для бронювання — напишіть повідомлення у відповідь, і ми зв'яжемось, щойно товар з'явиться."

	menu := Menu{{{Label: "⬅ Назад", Data: parentNav(key)}, {Label: "🏠 Головна", Data: "home"}}}
	e.deliver(cb, text, menu, "")
}

// captureReservationContact consumes the pending free-text reply and fans a
// reservation notice out to every staff identity.
func (e *Engine) captureReservationContact(s *session.Session, m *Message, key catalog.Key) {
	s.ClearPending()

	leaf, err := e.tree.Resolve(key)
	if err != nil {
		log.Printf("bot: reservation target %s no longer resolves: %v", key.Token(), err)
		if err := e.tr.SendText(m.ChatID, "😕 На жаль, цього товару вже немає в каталозі."); err != nil {
			log.Printf("bot: send: %v", err)
		}
		return
	}

	entry := e.overlay.Get(key.Token())
	notice := formatReservation(Reservation{
		ID:       uuid.NewString(),
		UserID:   s.UserID,
		Username: s.Username(),
		City:     s.City(),
		Leaf:     leaf,
		ETA:      entry.ETA,
		Contact:  m.Text,
		At:       time.Now(),
	})

	results := e.notifier.Broadcast(notice)
	logDeliveries("reservation for "+key.Token(), results)

	if err := e.tr.SendText(m.ChatID, "✅ Дякуємо! Ми отримали вашу заявку і зв'яжемось із вами."); err != nil {
		log.Printf("bot: send: %v", err)
	}
}
