package bot

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shopbot.GO/catalog"
	"shopbot.GO/session"
)

// renderMode selects between the customer walk (leaf taps add to cart or
// start a reservation) and the admin walk (leaf taps toggle availability).
type renderMode int

const (
	modeCustomer renderMode = iota
	modeAdmin
)

// nav builds a navigation token for this mode. Admin tokens carry the adm
// prefix so every admin action is allow-list checked on entry.
func (m renderMode) nav(parts ...string) string {
	tok := strings.Join(parts, ":")
	if m == modeAdmin {
		return "adm:" + tok
	}
	return tok
}

// money renders a price for display. The single place prices are rounded.
func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

func (e *Engine) renderCategories(mode renderMode) (string, Menu) {
	var menu Menu
	for _, c := range e.tree.Categories {
		menu = append(menu, []Button{{Label: c.Title, Data: mode.nav("cat", c.Key)}})
	}
	if mode == modeCustomer {
		menu = append(menu, []Button{{Label: "🛒 Кошик", Data: "cart"}})
		return "Оберіть категорію:", menu
	}
	return "🛠 Режим складу\nОберіть категорію:", menu
}

// navigate resolves a navigation token and renders the addressed menu.
// Bad or stale tokens recover to the nearest valid ancestor, never crash.
func (e *Engine) navigate(s *session.Session, cb *Callback, data string, mode renderMode) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "cat":
		if len(parts) != 2 {
			e.recoverToHome(s, cb, "Меню застаріло.")
			return
		}
		e.showCategory(s, cb, parts[1], mode)
	case "brand":
		if len(parts) != 3 {
			e.recoverToHome(s, cb, "Меню застаріло.")
			return
		}
		e.showBrand(s, cb, parts[1], parts[2], mode)
	case "block", "nest":
		if len(parts) != 4 {
			e.recoverToHome(s, cb, "Меню застаріло.")
			return
		}
		idx, err := strconv.Atoi(parts[3])
		if err != nil || idx < 0 {
			e.recoverToHome(s, cb, "Меню застаріло.")
			return
		}
		if parts[0] == "block" {
			e.showBlockFlavors(s, cb, parts[1], parts[2], idx, mode)
		} else {
			e.showNestedFlavors(s, cb, parts[1], parts[2], idx, mode)
		}
	default:
		e.recoverToHome(s, cb, "Меню застаріло.")
	}
}

func (e *Engine) showCategory(s *session.Session, cb *Callback, catKey string, mode renderMode) {
	c, ok := e.tree.Category(catKey)
	if !ok {
		e.recoverToHome(s, cb, "Категорію не знайдено — каталог оновився.")
		return
	}

	var menu Menu
	text := c.Title
	switch c.Kind {
	case catalog.CategoryFlat:
		text += "\n\nОберіть товар:"
		for i, it := range c.Items {
			k := catalog.CategoryItemKey(c.Key, i)
			menu = append(menu, []Button{e.leafButton(k, it.Name+" · "+money(it.Price), mode)})
		}
	case catalog.CategoryBranded:
		text += "\n\nОберіть бренд:"
		for _, b := range c.Brands {
			label := b.Title
			if b.PriceRange != "" {
				label += " · " + b.PriceRange
			}
			menu = append(menu, []Button{{Label: label, Data: mode.nav("brand", c.Key, b.Key)}})
		}
	}
	menu = e.withFooter(menu, mode, mode.nav("home"))
	e.deliver(cb, text, menu, e.photoPath(c.Photo))
}

func (e *Engine) showBrand(s *session.Session, cb *Callback, catKey, brandKey string, mode renderMode) {
	c, ok := e.tree.Category(catKey)
	if !ok || c.Kind != catalog.CategoryBranded {
		e.recoverToHome(s, cb, "Категорію не знайдено — каталог оновився.")
		return
	}
	b, ok := c.Brand(brandKey)
	if !ok {
		e.recoverToHome(s, cb, "Бренд не знайдено — каталог оновився.")
		return
	}

	var menu Menu
	text := "🔥 " + b.Title
	switch b.Kind {
	case catalog.BrandItems:
		text += "\n\nОберіть товар:"
		for i, it := range b.Items {
			k := catalog.BrandItemKey(c.Key, b.Key, i)
			menu = append(menu, []Button{e.leafButton(k, it.Name+" · "+money(it.Price), mode)})
		}
	case catalog.BrandNicotine:
		text += "\n\nОберіть міцність:"
		for i, blk := range b.Blocks {
			label := blk.Nicotine + " · " + money(blk.Price)
			menu = append(menu, []Button{{Label: label, Data: mode.nav("block", c.Key, b.Key, strconv.Itoa(i))}})
		}
	case catalog.BrandNested:
		text += "\n\nОберіть товар:"
		for i, it := range b.Items {
			label := it.Name + " · " + money(it.Price)
			menu = append(menu, []Button{{Label: label, Data: mode.nav("nest", c.Key, b.Key, strconv.Itoa(i))}})
		}
	}
	menu = e.withFooter(menu, mode, mode.nav("cat", c.Key))
	e.deliver(cb, text, menu, e.photoPath(b.Photo))
}

func (e *Engine) showBlockFlavors(s *session.Session, cb *Callback, catKey, brandKey string, idx int, mode renderMode) {
	b, ok := e.brandAt(catKey, brandKey, catalog.BrandNicotine)
	if !ok || idx >= len(b.Blocks) {
		e.recoverToHome(s, cb, "Товар більше недоступний — каталог оновився.")
		return
	}
	blk := b.Blocks[idx]
	back := mode.nav("brand", catKey, brandKey)

	text := "🔥 " + b.Title + " " + blk.Nicotine + "\n💶 Ціна: " + money(blk.Price) + "\n\nОберіть смак:"
	var menu Menu
	for fi, fl := range blk.Flavors {
		k := catalog.NicotineFlavorKey(catKey, brandKey, idx, fi)
		menu = append(menu, []Button{e.leafButton(k, fl, mode)})
	}
	menu = e.withFooter(menu, mode, back)
	e.deliver(cb, text, menu, "")
}

func (e *Engine) showNestedFlavors(s *session.Session, cb *Callback, catKey, brandKey string, idx int, mode renderMode) {
	b, ok := e.brandAt(catKey, brandKey, catalog.BrandNested)
	if !ok || idx >= len(b.Items) {
		e.recoverToHome(s, cb, "Товар більше недоступний — каталог оновився.")
		return
	}
	it := b.Items[idx]
	back := mode.nav("brand", catKey, brandKey)

	text := "🔥 " + it.Name + "\n💶 Ціна: " + money(it.Price) + "\n\nОберіть смак:"
	var menu Menu
	for fi, fl := range it.Flavors {
		k := catalog.NestedFlavorKey(catKey, brandKey, idx, fi)
		menu = append(menu, []Button{e.leafButton(k, fl, mode)})
	}
	menu = e.withFooter(menu, mode, back)
	e.deliver(cb, text, menu, e.photoPath(it.Photo))
}

// brandAt fetches a brand, requiring the kind the token was issued for.
func (e *Engine) brandAt(catKey, brandKey string, want catalog.BrandKind) (*catalog.Brand, bool) {
	c, ok := e.tree.Category(catKey)
	if !ok || c.Kind != catalog.CategoryBranded {
		return nil, false
	}
	b, ok := c.Brand(brandKey)
	if !ok || b.Kind != want {
		return nil, false
	}
	return b, true
}

// leafButton annotates one leaf with the stock overlay: available leaves
// carry their address key as the action token, unavailable ones the
// reservation token (admin mode always gets the toggle token).
func (e *Engine) leafButton(k catalog.Key, label string, mode renderMode) Button {
	tok := k.Token()
	entry := e.overlay.Get(tok)
	if mode == modeAdmin {
		mark := "✅ "
		if !entry.Available {
			mark = "🚫 "
		}
		return Button{Label: mark + label, Data: "tog:" + tok}
	}
	if entry.Available {
		return Button{Label: label, Data: tok}
	}
	if entry.ETA != nil {
		label += " (очікується " + entry.ETA.Format("02.01") + ")"
	}
	return Button{Label: label, Data: "rsv:" + tok}
}

// withFooter appends the back/home row (and the cart shortcut for
// customers).
func (e *Engine) withFooter(menu Menu, mode renderMode, backToken string) Menu {
	if mode == modeCustomer {
		menu = append(menu, []Button{{Label: "🛒 Кошик", Data: "cart"}})
	}
	row := []Button{{Label: "⬅ Назад", Data: backToken}}
	if backToken != mode.nav("home") {
		row = append(row, Button{Label: "🏠 Головна", Data: mode.nav("home")})
	}
	menu = append(menu, row)
	return menu
}

// photoPath resolves a catalog photo reference into the media directory;
// empty when media is not configured.
func (e *Engine) photoPath(photo string) string {
	if photo == "" || e.cfg.MediaDir == "" {
		return ""
	}
	return e.cfg.MediaDir + "/" + photo
}
