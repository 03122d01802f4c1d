package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// brandSKUFromLinkedData scans every embedded JSON-LD block for an item of
// type "Product" and pulls brand and sku/mpn from it. The type field may be
// a single value or a list; brand may be a plain string or a nested object
// with a name field; the sku occasionally only appears on the offers
// sub-object. First non-empty value wins for each field.
func brandSKUFromLinkedData(doc *goquery.Document) (brand, sku *string) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, tag *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(tag.Text())), &data); err != nil {
			return
		}
		for _, item := range flattenLinkedData(data) {
			if !isProductItem(item) {
				continue
			}
			if brand == nil {
				brand = linkedDataBrand(item["brand"])
			}
			if sku == nil {
				sku = linkedDataString(item["sku"])
			}
			if sku == nil {
				sku = linkedDataString(item["mpn"])
			}
			if sku == nil {
				if offers, ok := item["offers"].(map[string]any); ok {
					sku = linkedDataString(offers["sku"])
				}
			}
		}
	})
	return brand, sku
}

// flattenLinkedData yields every object in a JSON-LD value, which may be a
// single object, a list, or an @graph wrapper.
func flattenLinkedData(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var items []map[string]any
		for _, e := range t {
			items = append(items, flattenLinkedData(e)...)
		}
		return items
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			var items []map[string]any
			for _, e := range graph {
				items = append(items, flattenLinkedData(e)...)
			}
			return items
		}
		return []map[string]any{t}
	default:
		return nil
	}
}

func isProductItem(item map[string]any) bool {
	typ := item["@type"]
	if typ == nil {
		typ = item["type"]
	}
	switch t := typ.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func linkedDataBrand(v any) *string {
	switch b := v.(type) {
	case string:
		return optStr(NormalizeWS(b))
	case map[string]any:
		return linkedDataString(b["name"])
	}
	return nil
}

func linkedDataString(v any) *string {
	if s, ok := v.(string); ok {
		return optStr(NormalizeWS(s))
	}
	return nil
}
