package models

import "strings"

// Feed names a host product set.
type Feed string

const (
	FeedPopular Feed = "popular"
	FeedSaved   Feed = "saved"
)

func (f Feed) Valid() bool {
	return f == FeedPopular || f == FeedSaved
}

type FeaturedImage struct {
	URL     string `json:"url" validate:"omitempty,url"`
	AltText string `json:"altText"`
}

// Product is owned by the host product source and is read only here.
type Product struct {
	ID            string         `json:"id" validate:"required"`
	Title         string         `json:"title"`
	FeaturedImage *FeaturedImage `json:"featuredImage,omitempty" validate:"omitempty"`
}

// ImageURL returns the featured image url, or "" when the product has none.
func (p Product) ImageURL() string {
	if p.FeaturedImage == nil {
		return ""
	}
	return p.FeaturedImage.URL
}

func (p Product) AltText() string {
	if p.FeaturedImage == nil {
		return ""
	}
	return p.FeaturedImage.AltText
}

// Snapshot is one delivery from the host product source.
type Snapshot struct {
	Feed     Feed      `json:"feed"`
	Products []Product `json:"products" validate:"dive"`
}

// ProductIDs returns the ids of products in order.
// Identified returns the products that carry an id, keeping their order.
// Products without one cannot be swiped or generated for.
func Identified(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func ProductIDs(products []Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
