package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"review-scraper/pkg/models"
)

// UnknownTitle is the sentinel used when a product page carries no heading.
const UnknownTitle = "Unknown title"

// Product URLs embed the catalog identifier as /p<digits>/.
var productIDPattern = regexp.MustCompile(`/p(\d+)/`)

// The description lives in one of several containers depending on page
// generation; first match wins.
var descriptionSelectors = []string{
	`[data-testid="product-description"]`,
	"rz-product-description",
	".product-about",
}

// Specification-key synonyms for the brand/SKU fallback, both locales.
// Structured linked data is preferred; these cover listings without it.
var (
	brandSpecKeys = []string{"Бренд", "Brand", "Виробник", "Производитель", "Марка"}
	skuSpecKeys   = []string{"Артикул", "Код", "Код виробника", "Код товара", "Модель", "SKU", "Part Number"}
)

// ExtractProduct converts raw product-page markup into a Product record.
// Brand and SKU are resolved through a three-tier fallback: linked-data
// blocks, then specification-key synonyms, then (brand only) the first
// token of the title.
func ExtractProduct(markup, productURL string) (models.Product, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.Product{}, fmt.Errorf("parsing product HTML: %w", err)
	}

	p := models.Product{URL: productURL, Title: UnknownTitle}

	rawTitle := ""
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		rawTitle = NormalizeWS(h1.Text())
	}
	if rawTitle != "" {
		p.Title = rawTitle
	}

	if m := productIDPattern.FindStringSubmatch(productURL); m != nil {
		p.ExternalID = optStr(m[1])
	}

	for _, sel := range descriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if htmlStr, err := goquery.OuterHtml(node); err == nil {
			p.DescriptionHTML = optStr(htmlStr)
		}
		p.DescriptionText = optStr(NormalizeWS(node.Text()))
		break
	}

	p.Specs = extractSpecs(doc)

	brand, sku := brandSKUFromLinkedData(doc)
	if brand == nil {
		brand = specLookup(p.Specs, brandSpecKeys)
	}
	if sku == nil {
		sku = specLookup(p.Specs, skuSpecKeys)
	}
	if brand == nil && rawTitle != "" {
		// Crude, but better than nothing: the title almost always leads
		// with the manufacturer name.
		brand = optStr(strings.SplitN(rawTitle, " ", 2)[0])
	}
	p.Brand = brand
	p.SKU = sku

	return p, nil
}

// extractSpecs unions key/value pairs from two-column table rows and
// definition lists. Later matches override earlier ones on key collision.
func extractSpecs(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		k := NormalizeWS(cells.Eq(0).Text())
		v := NormalizeWS(cells.Eq(1).Text())
		if k != "" && v != "" {
			specs[k] = v
		}
	})

	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextAll().Filter("dd").First()
		if dd.Length() == 0 {
			return
		}
		k := NormalizeWS(dt.Text())
		v := NormalizeWS(dd.Text())
		if k != "" && v != "" {
			specs[k] = v
		}
	})

	return specs
}

func specLookup(specs map[string]string, keys []string) *string {
	for _, key := range keys {
		if v, ok := specs[key]; ok && v != "" {
			return optStr(v)
		}
	}
	return nil
}

// NormalizeWS collapses all runs of whitespace to single spaces and trims.
func NormalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
