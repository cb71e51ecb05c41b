package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopbot.GO/catalog"
	"shopbot.GO/session"
)

// handleAdd appends a resolved leaf to the user's cart. The whole sequence
// runs under the session's mutation lock, so a rapid double-tap cannot
// append twice: the second tap finds the lock held and is told to wait.
func (e *Engine) handleAdd(s *session.Session, cb *Callback, tok string) {
	key, err := catalog.ParseKey(tok)
	if err != nil {
		e.ack(cb, "")
		e.recoverToHome(s, cb, "Кнопка застаріла.")
		return
	}

	if !s.TryAcquire() {
		e.ack(cb, "⏳ Обробляю попередню дію, зачекайте…")
		return
	}
	defer s.Release()
	e.ack(cb, "")

	leaf, err := e.tree.Resolve(key)
	if err != nil {
		e.recoverToHome(s, cb, "Товар більше недоступний — каталог оновився.")
		return
	}

	// Availability is advisory to navigation, not enforced by the cart:
	// if the leaf went out of stock since the menu was rendered, the tap
	// is redirected to the reservation flow instead.
	if entry := e.overlay.Get(tok); !entry.Available {
		e.startReservation(s, cb, key, leaf)
		return
	}

	line := s.Cart.Add(leaf.Name, leaf.Price)
	menu := Menu{
		{{Label: "➕ Додати ще товар", Data: parentNav(key)}},
		{{Label: "🛒 Перейти в кошик", Data: "cart"}},
	}
	e.deliver(cb, "✅ Додано в кошик:\n"+line.Name+" · "+money(line.UnitPrice), menu, "")
}

// parentNav maps a leaf key back to the menu it was rendered from.
func parentNav(k catalog.Key) string {
	switch k.Kind {
	case catalog.KindCategoryItem:
		return "cat:" + k.Cat
	case catalog.KindBrandItem:
		return "brand:" + k.Cat + ":" + k.Brand
	case catalog.KindNicotineFlavor:
		return "block:" + k.Cat + ":" + k.Brand + ":" + strconv.Itoa(k.Indices[0])
	case catalog.KindNestedFlavor:
		return "nest:" + k.Cat + ":" + k.Brand + ":" + strconv.Itoa(k.Indices[0])
	}
	return "home"
}

func (e *Engine) handleCart(s *session.Session, cb *Callback, data string) {
	switch data {
	case "cart":
		// reads the same unguarded line slice the mutations append to,
		// so the view takes the lock too
		if !s.TryAcquire() {
			e.ack(cb, "⏳ Обробляю попередню дію, зачекайте…")
			return
		}
		defer s.Release()
		e.ack(cb, "")
		e.showCart(s, cb, "")
	case "cart:clear":
		if !s.TryAcquire() {
			e.ack(cb, "⏳ Обробляю попередню дію, зачекайте…")
			return
		}
		defer s.Release()
		e.ack(cb, "")
		s.Cart.Clear()
		e.deliver(cb, "🗑 Кошик очищено", Menu{{{Label: "🛍 До каталогу", Data: "home"}}}, "")
	case "cart:undo":
		if !s.TryAcquire() {
			e.ack(cb, "⏳ Обробляю попередню дію, зачекайте…")
			return
		}
		defer s.Release()
		e.ack(cb, "")
		line, err := s.Cart.RemoveLast()
		if err != nil {
			e.showCart(s, cb, "Кошик уже порожній.")
			return
		}
		e.showCart(s, cb, "➖ Прибрано: "+line.Name)
	default:
		e.ack(cb, "")
		e.recoverToHome(s, cb, "Цю кнопку вже не можна використати.")
	}
}

// showCart renders the numbered cart view. Callers hold the session lock.
func (e *Engine) showCart(s *session.Session, cb *Callback, notice string) {
	lines := s.Cart.Lines()

	var sb strings.Builder
	if notice != "" {
		sb.WriteString(notice + "\n\n")
	}
	if len(lines) == 0 {
		sb.WriteString("🛒 Ваш кошик порожній")
		menu := Menu{{{Label: "🛍 До каталогу", Data: "home"}}}
		e.deliver(cb, sb.String(), menu, "")
		return
	}

	sb.WriteString("🛒 Ваше замовлення:\n\n")
	for i, l := range lines {
		fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, l.Name, money(l.UnitPrice))
	}
	sb.WriteString("\n💶 Разом: " + money(s.Cart.Total()))

	menu := Menu{
		{{Label: "➕ Додати ще товар", Data: "home"}},
		{{Label: "✅ Оформити замовлення", Data: "checkout"}},
		{{Label: "➖ Прибрати останній", Data: "cart:undo"}, {Label: "❌ Очистити", Data: "cart:clear"}},
	}
	e.deliver(cb, sb.String(), menu, "")
}

// handleCheckout snapshots the cart, fans the order notice out to staff,
// and clears the cart. The order counts as placed once accepted locally;
// delivery failures are logged per recipient, not retried, and do not block
// the customer confirmation.
func (e *Engine) handleCheckout(s *session.Session, cb *Callback) {
	if !s.TryAcquire() {
		e.ack(cb, "⏳ Обробляю попередню дію, зачекайте…")
		return
	}
	defer s.Release()
	e.ack(cb, "")

	lines := s.Cart.Lines()
	if len(lines) == 0 {
		menu := Menu{{{Label: "🛍 До каталогу", Data: "home"}}}
		e.deliver(cb, "🛒 Кошик порожній — нема що оформлювати.", menu, "")
		return
	}

	order := Order{
		ID:       uuid.NewString(),
		UserID:   s.UserID,
		Username: s.Username(),
		City:     s.City(),
		Lines:    lines,
		Total:    s.Cart.Total(),
		At:       time.Now(),
	}

	results := e.notifier.Broadcast(formatOrder(order))
	logDeliveries("order "+order.ID, results)

	if e.archive != nil {
		e.archive.IndexOrder(order)
	}

	s.Cart.Clear()

	confirm := "✅ Дякуємо за замовлення!"
	if e.cfg.CourierContact != "" {
		confirm += "\n\nНаш курʼєр звʼяжеться з вами:\n" + e.cfg.CourierContact
	}
	e.deliver(cb, confirm, Menu{{{Label: "🏠 Головна", Data: "home"}}}, "")
}

func logDeliveries(what string, results []DeliveryResult) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("bot: %s: delivery to %d failed: %v", what, r.Recipient, r.Err)
		}
	}
	if failed == len(results) && len(results) > 0 {
		log.Printf("bot: %s: all %d deliveries failed", what, len(results))
	}
}
