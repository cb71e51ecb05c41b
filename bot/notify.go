package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopbot.GO/cart"
	"shopbot.GO/catalog"
)

// DeliveryResult records one recipient's fan-out outcome. Failures are
// aggregated and logged by the caller, never swallowed and never retried.
type DeliveryResult struct {
	Recipient int64
	Err       error
}

// Notifier fans staff notices out best-effort: one failed recipient does
// not block the rest.
type Notifier struct {
	tr         Transport
	recipients []int64
}

func NewNotifier(tr Transport, recipients []int64) *Notifier {
	return &Notifier{tr: tr, recipients: recipients}
}

// Broadcast sends text to every recipient and reports each outcome.
func (n *Notifier) Broadcast(text string) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(n.recipients))
	for _, id := range n.recipients {
		results = append(results, DeliveryResult{Recipient: id, Err: n.tr.SendText(id, text)})
	}
	return results
}

// Order is a checkout snapshot handed to staff and the archive.
type Order struct {
	ID       string          `json:"id"`
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	City     string          `json:"city,omitempty"`
	Lines    []cart.Line     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	At       time.Time       `json:"at"`
}

// Reservation is the staff notice for an out-of-stock request.
type Reservation struct {
	ID       string
	UserID   int64
	Username string
	City     string
	Leaf     catalog.Leaf
	ETA      *time.Time
	Contact  string
	At       time.Time
}

const noticeTimeLayout = "02.01.2006 15:04"

func formatOrder(o Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 НОВЕ ЗАМОВЛЕННЯ #%s\n\n", shortID(o.ID))
	fmt.Fprintf(&sb, "👤 Клієнт: @%s\nID: %d\n", o.Username, o.UserID)
	if o.City != "" {
		fmt.Fprintf(&sb, "📍 Місто: %s\n", o.City)
	}
	sb.WriteString("\n🛒 Товари:\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&sb, "• %s — %s\n", l.Name, money(l.UnitPrice))
	}
	fmt.Fprintf(&sb, "\n💶 Разом: %s\n🕒 %s", money(o.Total), o.At.Format(noticeTimeLayout))
	return sb.String()
}

func formatReservation(r Reservation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 БРОНЮВАННЯ #%s\n\n", shortID(r.ID))
	fmt.Fprintf(&sb, "👤 Клієнт: @%s\nID: %d\n", r.Username, r.UserID)
	if r.City != "" {
		fmt.Fprintf(&sb, "📍 Місто: %s\n", r.City)
	}
	fmt.Fprintf(&sb, "\n📦 Товар: %s — %s\n", r.Leaf.Name, money(r.Leaf.Price))
	if r.ETA != nil {
		fmt.Fprintf(&sb, "📅 Очікуване постачання: %s\n", r.ETA.Format("02.01.2006"))
	}
	fmt.Fprintf(&sb, "✉️ Контакт: %s\n🕒 %s", r.Contact, r.At.Format(noticeTimeLayout))
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
