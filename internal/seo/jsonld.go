package seo

import (
	"encoding/json"
	"math"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Business describes the lodging business behind the site.
type Business struct {
	Name        string
	URL         string
	Image       string
	Description string
	Street      string
	Locality    string
	Region      string
	Country     string
	PriceRange  string
}

// LodgingBusiness returns a LodgingBusiness schema. The aggregate rating is
// omitted when count is zero.
func LodgingBusiness(b Business, rating float64, count int) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LodgingBusiness",
		"name":     b.Name,
	}
	if b.URL != "" {
		m["url"] = b.URL
	}
	if b.Image != "" {
		m["image"] = b.Image
	}
	if b.Description != "" {
		m["description"] = b.Description
	}
	if b.PriceRange != "" {
		m["priceRange"] = b.PriceRange
	}
	if b.Locality != "" {
		addr := map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": b.Locality,
		}
		if b.Street != "" {
			addr["streetAddress"] = b.Street
		}
		if b.Region != "" {
			addr["addressRegion"] = b.Region
		}
		if b.Country != "" {
			addr["addressCountry"] = b.Country
		}
		m["address"] = addr
	}
	if count > 0 {
		m["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": math.Round(rating*10) / 10,
			"bestRating":  5,
			"worstRating": 1,
			"reviewCount": count,
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Stay describes one bookable unit for the Accommodation schema.
type Stay struct {
	Name        string
	Description string
	URL         string
	Image       string
	MaxGuests   int
	Bedrooms    int
	Bathrooms   int
	BedType     string
	SqFt        int
	PriceFrom   int
	Currency    string
}

// Accommodation returns an Accommodation schema with a nightly offer.
func Accommodation(s Stay) map[string]any {
	m := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "Accommodation",
		"name":          s.Name,
		"numberOfRooms": s.Bedrooms,
		"occupancy": map[string]any{
			"@type":    "QuantitativeValue",
			"maxValue": s.MaxGuests,
		},
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.URL != "" {
		m["url"] = s.URL
	}
	if s.Image != "" {
		m["image"] = s.Image
	}
	if s.Bathrooms > 0 {
		m["numberOfBathroomsTotal"] = s.Bathrooms
	}
	if s.BedType != "" {
		m["bed"] = s.BedType
	}
	if s.SqFt > 0 {
		m["floorSize"] = map[string]any{
			"@type":    "QuantitativeValue",
			"value":    s.SqFt,
			"unitCode": "FTK",
		}
	}
	if s.PriceFrom > 0 {
		currency := s.Currency
		if currency == "" {
			currency = "USD"
		}
		m["offers"] = map[string]any{
			"@type":         "Offer",
			"price":         s.PriceFrom,
			"priceCurrency": currency,
			"url":           s.URL,
			"priceSpecification": map[string]any{
				"@type":         "UnitPriceSpecification",
				"price":         s.PriceFrom,
				"priceCurrency": currency,
				"unitText":      "night",
			},
		}
	}
	return m
}
