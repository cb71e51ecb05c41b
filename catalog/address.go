package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the leaf addressing kind, the first token segment.
type Kind string

const (
	KindCategoryItem   Kind = "ci" // ci:<cat>:<item>
	KindBrandItem      Kind = "bi" // bi:<cat>:<brand>:<item>
	KindNicotineFlavor Kind = "nf" // nf:<cat>:<brand>:<block>:<flavor>
	KindNestedFlavor   Kind = "xf" // xf:<cat>:<brand>:<item>:<flavor>
)

// Key addresses one leaf positionally: the chain of parent keys plus child
// indices. Stable across title/price edits; breaks (acceptably) when item
// ordering changes. The string form doubles as the stock overlay key.
type Key struct {
	Kind    Kind
	Cat     string
	Brand   string
	Indices []int
}

// Leaf is a resolved addressable leaf: display name and current price.
type Leaf struct {
	Name  string
	Price decimal.Decimal
	Photo string
}

func CategoryItemKey(cat string, item int) Key {
	return Key{Kind: KindCategoryItem, Cat: cat, Indices: []int{item}}
}

func BrandItemKey(cat, brand string, item int) Key {
	return Key{Kind: KindBrandItem, Cat: cat, Brand: brand, Indices: []int{item}}
}

func NicotineFlavorKey(cat, brand string, block, flavor int) Key {
	return Key{Kind: KindNicotineFlavor, Cat: cat, Brand: brand, Indices: []int{block, flavor}}
}

func NestedFlavorKey(cat, brand string, item, flavor int) Key {
	return Key{Kind: KindNestedFlavor, Cat: cat, Brand: brand, Indices: []int{item, flavor}}
}

// Token serializes the key as colon-delimited ASCII. Catalog keys are
// validated at load time to exclude the delimiter, so tokens are unambiguous.
func (k Key) Token() string {
	parts := make([]string, 0, 2+len(k.Indices)+1)
	parts = append(parts, string(k.Kind), k.Cat)
	if k.Brand != "" {
		parts = append(parts, k.Brand)
	}
	for _, i := range k.Indices {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ":")
}

// Equal reports segment-wise equality.
func (k Key) Equal(o Key) bool {
	if k.Kind != o.Kind || k.Cat != o.Cat || k.Brand != o.Brand || len(k.Indices) != len(o.Indices) {
		return false
	}
	for i := range k.Indices {
		if k.Indices[i] != o.Indices[i] {
			return false
		}
	}
	return true
}

// DecodeReason classifies token decode failures.
type DecodeReason int

const (
	DecodeMalformed DecodeReason = iota
	DecodeUnknownKind
)

// DecodeError is returned for tokens that cannot be parsed at all.
// Stale-but-well-formed tokens parse fine and fail later at Resolve.
type DecodeError struct {
	Token  string
	Reason DecodeReason
}

func (e *DecodeError) Error() string {
	switch e.Reason {
	case DecodeUnknownKind:
		return fmt.Sprintf("address: unknown kind in token %q", e.Token)
	default:
		return fmt.Sprintf("address: malformed token %q", e.Token)
	}
}

// ErrStale means a well-formed key no longer resolves against the current
// tree (the catalog changed since the token was issued). Recoverable: the
// caller re-renders the nearest valid menu.
var ErrStale = errors.New("address: stale reference")

// ErrNotFound means a named category or brand key is absent from the tree.
var ErrNotFound = errors.New("catalog: not found")

func indexCount(k Kind) (n int, brand bool, ok bool) {
	switch k {
	case KindCategoryItem:
		return 1, false, true
	case KindBrandItem:
		return 1, true, true
	case KindNicotineFlavor, KindNestedFlavor:
		return 2, true, true
	}
	return 0, false, false
}

// ParseKey decodes a leaf token. Segment counts and index syntax are
// validated here; resolution against the tree is Resolve's job.
func ParseKey(token string) (Key, error) {
	parts := strings.Split(token, ":")
	if len(parts) < 2 {
		return Key{}, &DecodeError{Token: token, Reason: DecodeMalformed}
	}
	for _, p := range parts {
		if p == "" {
			return Key{}, &DecodeError{Token: token, Reason: DecodeMalformed}
		}
	}

	kind := Kind(parts[0])
	nIdx, hasBrand, ok := indexCount(kind)
	if !ok {
		return Key{}, &DecodeError{Token: token, Reason: DecodeUnknownKind}
	}

	want := 2 + nIdx
	if hasBrand {
		want++
	}
	if len(parts) != want {
		return Key{}, &DecodeError{Token: token, Reason: DecodeMalformed}
	}

	k := Key{Kind: kind, Cat: parts[1]}
	rest := parts[2:]
	if hasBrand {
		k.Brand = rest[0]
		rest = rest[1:]
	}
	for _, p := range rest {
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 {
			return Key{}, &DecodeError{Token: token, Reason: DecodeMalformed}
		}
		k.Indices = append(k.Indices, i)
	}
	return k, nil
}

// Resolve walks the tree to the leaf the key addresses. Missing category or
// brand keys yield ErrNotFound; out-of-range indices or a kind that no
// longer matches the node's shape yield ErrStale. Never panics on
// user-supplied keys.
func (t *Tree) Resolve(k Key) (Leaf, error) {
	cat, ok := t.Category(k.Cat)
	if !ok {
		return Leaf{}, ErrNotFound
	}

	switch k.Kind {
	case KindCategoryItem:
		if cat.Kind != CategoryFlat {
			return Leaf{}, ErrStale
		}
		i := k.Indices[0]
		if i >= len(cat.Items) {
			return Leaf{}, ErrStale
		}
		it := cat.Items[i]
		return Leaf{Name: it.Name, Price: it.Price, Photo: it.Photo}, nil

	case KindBrandItem:
		b, err := t.brandFor(cat, k)
		if err != nil {
			return Leaf{}, err
		}
		if b.Kind != BrandItems {
			return Leaf{}, ErrStale
		}
		i := k.Indices[0]
		if i >= len(b.Items) {
			return Leaf{}, ErrStale
		}
		it := b.Items[i]
		return Leaf{Name: b.Title + " — " + it.Name, Price: it.Price, Photo: it.Photo}, nil

	case KindNicotineFlavor:
		b, err := t.brandFor(cat, k)
		if err != nil {
			return Leaf{}, err
		}
		if b.Kind != BrandNicotine {
			return Leaf{}, ErrStale
		}
		bi, fi := k.Indices[0], k.Indices[1]
		if bi >= len(b.Blocks) {
			return Leaf{}, ErrStale
		}
		blk := b.Blocks[bi]
		if fi >= len(blk.Flavors) {
			return Leaf{}, ErrStale
		}
		return Leaf{Name: b.Title + " " + blk.Nicotine + " — " + blk.Flavors[fi], Price: blk.Price}, nil

	case KindNestedFlavor:
		b, err := t.brandFor(cat, k)
		if err != nil {
			return Leaf{}, err
		}
		if b.Kind != BrandNested {
			return Leaf{}, ErrStale
		}
		ii, fi := k.Indices[0], k.Indices[1]
		if ii >= len(b.Items) {
			return Leaf{}, ErrStale
		}
		it := b.Items[ii]
		if fi >= len(it.Flavors) {
			return Leaf{}, ErrStale
		}
		return Leaf{Name: it.Name + " — " + it.Flavors[fi], Price: it.Price, Photo: it.Photo}, nil
	}

	return Leaf{}, &DecodeError{Token: k.Token(), Reason: DecodeUnknownKind}
}

func (t *Tree) brandFor(cat *Category, k Key) (*Brand, error) {
	if cat.Kind != CategoryBranded {
		return nil, ErrStale
	}
	b, ok := cat.Brand(k.Brand)
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}
