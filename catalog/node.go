package catalog

import (
	"github.com/shopspring/decimal"
)

// CategoryKind discriminates a category's children. Resolved once at load;
// later lookups match over this closed set instead of re-sniffing fields.
type CategoryKind int

const (
	CategoryUnknown CategoryKind = iota
	CategoryFlat                 // direct item list
	CategoryBranded              // brand submenus
)

func (k CategoryKind) String() string {
	switch k {
	case CategoryFlat:
		return "flat"
	case CategoryBranded:
		return "branded"
	default:
		return "unknown"
	}
}

// BrandKind discriminates a brand's children.
type BrandKind int

const (
	BrandUnknown  BrandKind = iota
	BrandItems              // plain item list
	BrandNicotine           // nicotine blocks sharing a price, flavors as sub-leaves
	BrandNested             // items carrying their own flavor lists
)

func (k BrandKind) String() string {
	switch k {
	case BrandItems:
		return "items"
	case BrandNicotine:
		return "nicotine"
	case BrandNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Tree is the immutable product catalog. Built once by Load; no code path
// mutates it afterwards. Availability lives in the stock overlay, never here.
type Tree struct {
	Categories []*Category

	byKey map[string]*Category
}

// Category is a top-level catalog node.
type Category struct {
	Key   string
	Title string
	Photo string
	Kind  CategoryKind

	Items  []Item   // CategoryFlat
	Brands []*Brand // CategoryBranded

	brandByKey map[string]*Brand
}

// Brand groups items under a branded category.
type Brand struct {
	Key        string
	Title      string
	Photo      string
	PriceRange string
	Kind       BrandKind

	Items  []Item          // BrandItems, BrandNested
	Blocks []NicotineBlock // BrandNicotine
}

// Item is a purchasable leaf. Under BrandNested it carries flavors and the
// flavors are the leaves instead.
type Item struct {
	Name    string
	Price   decimal.Decimal
	Photo   string
	Flavors []string
}

// NicotineBlock is a leaf group sharing one price; each flavor is an
// addressable sub-leaf.
type NicotineBlock struct {
	Nicotine string
	Price    decimal.Decimal
	Flavors  []string
}

// Category returns the category with the given key.
func (t *Tree) Category(key string) (*Category, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// Brand returns the brand with the given key within the category.
func (c *Category) Brand(key string) (*Brand, bool) {
	b, ok := c.brandByKey[key]
	return b, ok
}

func (t *Tree) index() {
	t.byKey = make(map[string]*Category, len(t.Categories))
	for _, c := range t.Categories {
		t.byKey[c.Key] = c
		c.brandByKey = make(map[string]*Brand, len(c.Brands))
		for _, b := range c.Brands {
			c.brandByKey[b.Key] = b
		}
	}
}

// Leaves calls fn for every addressable leaf in the tree, in rendering
// order, with the leaf's address key.
func (t *Tree) Leaves(fn func(Key, Leaf)) {
	for _, c := range t.Categories {
		c.Leaves(fn)
	}
}

// Leaves walks one category's addressable leaves.
func (c *Category) Leaves(fn func(Key, Leaf)) {
	switch c.Kind {
	case CategoryFlat:
		for i, it := range c.Items {
			k := CategoryItemKey(c.Key, i)
			fn(k, Leaf{Name: it.Name, Price: it.Price, Photo: it.Photo})
		}
	case CategoryBranded:
		for _, b := range c.Brands {
			b.leaves(c.Key, fn)
		}
	}
}

func (b *Brand) leaves(catKey string, fn func(Key, Leaf)) {
	switch b.Kind {
	case BrandItems:
		for i, it := range b.Items {
			k := BrandItemKey(catKey, b.Key, i)
			fn(k, Leaf{Name: b.Title + " — " + it.Name, Price: it.Price, Photo: it.Photo})
		}
	case BrandNicotine:
		for bi, blk := range b.Blocks {
			for fi, fl := range blk.Flavors {
				k := NicotineFlavorKey(catKey, b.Key, bi, fi)
				fn(k, Leaf{Name: b.Title + " " + blk.Nicotine + " — " + fl, Price: blk.Price})
			}
		}
	case BrandNested:
		for ii, it := range b.Items {
			for fi, fl := range it.Flavors {
				k := NestedFlavorKey(catKey, b.Key, ii, fi)
				fn(k, Leaf{Name: it.Name + " — " + fl, Price: it.Price, Photo: it.Photo})
			}
		}
	}
}
