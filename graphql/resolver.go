package graphql

import (
	"shopbot.GO/catalog"
	"shopbot.GO/stock"
)

// RootResolver is the root for graphql-go.
type RootResolver struct {
	Tree    *catalog.Tree
	Overlay *stock.Overlay
}

func (r *RootResolver) Categories() []*CategoryResolver {
	out := make([]*CategoryResolver, 0, len(r.Tree.Categories))
	for _, c := range r.Tree.Categories {
		out = append(out, &CategoryResolver{cat: c, overlay: r.Overlay})
	}
	return out
}

func (r *RootResolver) Leaf(args struct{ AddressKey string }) *LeafResolver {
	key, err := catalog.ParseKey(args.AddressKey)
	if err != nil {
		return nil
	}
	leaf, err := r.Tree.Resolve(key)
	if err != nil {
		return nil
	}
	return &LeafResolver{key: key, leaf: leaf, overlay: r.Overlay}
}

type CategoryResolver struct {
	cat     *catalog.Category
	overlay *stock.Overlay
}

func (r *CategoryResolver) Key() string   { return r.cat.Key }
func (r *CategoryResolver) Title() string { return r.cat.Title }
func (r *CategoryResolver) Kind() string  { return r.cat.Kind.String() }

func (r *CategoryResolver) Brands() []*BrandResolver {
	out := make([]*BrandResolver, 0, len(r.cat.Brands))
	for _, b := range r.cat.Brands {
		out = append(out, &BrandResolver{brand: b})
	}
	return out
}

func (r *CategoryResolver) Leaves() []*LeafResolver {
	var out []*LeafResolver
	r.cat.Leaves(func(k catalog.Key, leaf catalog.Leaf) {
		out = append(out, &LeafResolver{key: k, leaf: leaf, overlay: r.overlay})
	})
	return out
}

type BrandResolver struct {
	brand *catalog.Brand
}

func (r *BrandResolver) Key() string   { return r.brand.Key }
func (r *BrandResolver) Title() string { return r.brand.Title }
func (r *BrandResolver) Kind() string  { return r.brand.Kind.String() }

func (r *BrandResolver) PriceRange() *string {
	if r.brand.PriceRange == "" {
		return nil
	}
	pr := r.brand.PriceRange
	return &pr
}

type LeafResolver struct {
	key     catalog.Key
	leaf    catalog.Leaf
	overlay *stock.Overlay
}

func (r *LeafResolver) AddressKey() string { return r.key.Token() }
func (r *LeafResolver) Name() string       { return r.leaf.Name }
func (r *LeafResolver) Price() string      { return r.leaf.Price.StringFixed(2) }

func (r *LeafResolver) Available() bool {
	return r.overlay.Get(r.key.Token()).Available
}

func (r *LeafResolver) Eta() *string {
	entry := r.overlay.Get(r.key.Token())
	if entry.ETA == nil {
		return nil
	}
	s := entry.ETA.Format("2006-01-02")
	return &s
}
