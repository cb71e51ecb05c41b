package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// The catalog document carries no shape discriminator: a category holds
// either "items" or "brands", and a brand's entries are classified by which
// fields they carry. All of that sniffing happens exactly once, here, into
// the explicit CategoryKind/BrandKind enums; ambiguous documents are
// rejected at load instead of misread later.

type document struct {
	Categories []rawCategory `json:"categories"`
}

type rawCategory struct {
	Key    string     `json:"key"`
	Title  string     `json:"title"`
	Photo  string     `json:"photo"`
	Items  []rawEntry `json:"items"`
	Brands []rawBrand `json:"brands"`
}

type rawBrand struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	Photo      string     `json:"photo"`
	PriceRange string     `json:"price_range"`
	Items      []rawEntry `json:"items"`
}

// rawEntry is the undiscriminated union of Item and NicotineBlock.
type rawEntry struct {
	Name     string          `json:"name"`
	Nicotine string          `json:"nicotine"`
	Price    decimal.Decimal `json:"price"`
	Photo    string          `json:"photo"`
	Flavors  []string        `json:"flavors"`
}

// Load reads and validates the catalog document from path.
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes, classifies and validates a catalog document.
func Parse(r io.Reader) (*Tree, error) {
	// UseNumber keeps prices as literal strings all the way into decimal,
	// so 1.005 stays 1.005.
	jd := json.NewDecoder(r)
	jd.UseNumber()
	var generic map[string]interface{}
	if err := jd.Decode(&generic); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	var doc document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberToDecimalHook,
			flavorRecordHook,
		),
		Result:  &doc,
		TagName: "json",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(generic); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	return build(doc)
}

// numberToDecimalHook converts json.Number (and string) prices to decimal
// without a float64 round trip.
func numberToDecimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	}
	return data, nil
}

// flavorRecordHook accepts a flavor as either a bare string or a {name}
// record.
func flavorRecordHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	m, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	if name, ok := m["name"].(string); ok {
		return name, nil
	}
	return data, fmt.Errorf("catalog: flavor record without name")
}

func build(doc document) (*Tree, error) {
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("catalog: document has no categories")
	}

	t := &Tree{}
	seen := make(map[string]bool)
	for _, rc := range doc.Categories {
		if err := checkKey(rc.Key); err != nil {
			return nil, fmt.Errorf("catalog: category %q: %w", rc.Key, err)
		}
		if seen[rc.Key] {
			return nil, fmt.Errorf("catalog: duplicate category key %q", rc.Key)
		}
		seen[rc.Key] = true

		c, err := buildCategory(rc)
		if err != nil {
			return nil, err
		}
		t.Categories = append(t.Categories, c)
	}
	t.index()
	return t, nil
}

func buildCategory(rc rawCategory) (*Category, error) {
	c := &Category{Key: rc.Key, Title: rc.Title, Photo: rc.Photo}
	if c.Title == "" {
		return nil, fmt.Errorf("catalog: category %q: missing title", rc.Key)
	}

	switch {
	case len(rc.Items) > 0 && len(rc.Brands) > 0:
		return nil, fmt.Errorf("catalog: category %q: has both items and brands", rc.Key)
	case len(rc.Items) > 0:
		c.Kind = CategoryFlat
		for i, re := range rc.Items {
			it, err := buildItem(re, fmt.Sprintf("category %q item %d", rc.Key, i))
			if err != nil {
				return nil, err
			}
			if len(it.Flavors) > 0 || re.Nicotine != "" {
				return nil, fmt.Errorf("catalog: category %q item %d: flat items cannot nest", rc.Key, i)
			}
			c.Items = append(c.Items, it)
		}
	case len(rc.Brands) > 0:
		c.Kind = CategoryBranded
		seen := make(map[string]bool)
		for _, rb := range rc.Brands {
			if err := checkKey(rb.Key); err != nil {
				return nil, fmt.Errorf("catalog: category %q brand %q: %w", rc.Key, rb.Key, err)
			}
			if seen[rb.Key] {
				return nil, fmt.Errorf("catalog: category %q: duplicate brand key %q", rc.Key, rb.Key)
			}
			seen[rb.Key] = true
			b, err := buildBrand(rc.Key, rb)
			if err != nil {
				return nil, err
			}
			c.Brands = append(c.Brands, b)
		}
	default:
		return nil, fmt.Errorf("catalog: category %q: no children", rc.Key)
	}
	return c, nil
}

func buildBrand(catKey string, rb rawBrand) (*Brand, error) {
	b := &Brand{Key: rb.Key, Title: rb.Title, Photo: rb.Photo, PriceRange: rb.PriceRange}
	where := fmt.Sprintf("category %q brand %q", catKey, rb.Key)
	if b.Title == "" {
		return nil, fmt.Errorf("catalog: %s: missing title", where)
	}
	if len(rb.Items) == 0 {
		return nil, fmt.Errorf("catalog: %s: no items", where)
	}

	nicotine, flavored := 0, 0
	for _, re := range rb.Items {
		if re.Nicotine != "" {
			nicotine++
		}
		if len(re.Flavors) > 0 {
			flavored++
		}
	}

	switch {
	case nicotine == len(rb.Items):
		b.Kind = BrandNicotine
		for i, re := range rb.Items {
			if len(re.Flavors) == 0 {
				return nil, fmt.Errorf("catalog: %s block %d: nicotine block without flavors", where, i)
			}
			if re.Price.IsNegative() {
				return nil, fmt.Errorf("catalog: %s block %d: negative price", where, i)
			}
			b.Blocks = append(b.Blocks, NicotineBlock{
				Nicotine: re.Nicotine,
				Price:    re.Price,
				Flavors:  re.Flavors,
			})
		}
	case nicotine > 0:
		// An entry list mixing nicotine blocks with plain items is the
		// ambiguous case; reject it instead of guessing from element 0.
		return nil, fmt.Errorf("catalog: %s: mixes nicotine blocks with plain items", where)
	case flavored > 0:
		b.Kind = BrandNested
		for i, re := range rb.Items {
			if len(re.Flavors) == 0 {
				return nil, fmt.Errorf("catalog: %s item %d: missing flavors while siblings have them", where, i)
			}
			it, err := buildItem(re, fmt.Sprintf("%s item %d", where, i))
			if err != nil {
				return nil, err
			}
			b.Items = append(b.Items, it)
		}
	default:
		b.Kind = BrandItems
		for i, re := range rb.Items {
			it, err := buildItem(re, fmt.Sprintf("%s item %d", where, i))
			if err != nil {
				return nil, err
			}
			b.Items = append(b.Items, it)
		}
	}
	return b, nil
}

func buildItem(re rawEntry, where string) (Item, error) {
	if re.Name == "" {
		return Item{}, fmt.Errorf("catalog: %s: missing name", where)
	}
	if re.Price.IsNegative() {
		return Item{}, fmt.Errorf("catalog: %s: negative price", where)
	}
	return Item{Name: re.Name, Price: re.Price, Photo: re.Photo, Flavors: re.Flavors}, nil
}

// checkKey rejects keys that would corrupt the colon-delimited token format.
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, ":") {
		return fmt.Errorf("key contains ':'")
	}
	return nil
}
