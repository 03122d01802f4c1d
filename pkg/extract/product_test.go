package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<html><body>
<h1>Acme Phone X 8/256GB Black</h1>
<div data-testid="product-description"><p>Флагманський смартфон.</p></div>
<table>
  <tr><th>Діагональ екрана</th><td>6.6"</td></tr>
  <tr><th>Виробник</th><td>Acme</td></tr>
  <tr><td>Код товара</td><td>987654</td></tr>
</table>
</body></html>`

func TestExtractProduct_Basics(t *testing.T) {
	p, err := ExtractProduct(productPage, "https://example.com/ua/acme-phone-x/p123456/")

	require.NoError(t, err)
	assert.Equal(t, "Acme Phone X 8/256GB Black", p.Title)
	require.NotNil(t, p.ExternalID)
	assert.Equal(t, "123456", *p.ExternalID)
	require.NotNil(t, p.DescriptionText)
	assert.Equal(t, "Флагманський смартфон.", *p.DescriptionText)
	require.NotNil(t, p.DescriptionHTML)
	assert.Contains(t, *p.DescriptionHTML, `data-testid="product-description"`)
	assert.Equal(t, map[string]string{
		"Діагональ екрана": `6.6"`,
		"Виробник":         "Acme",
		"Код товара":       "987654",
	}, p.Specs)
}

func TestExtractProduct_BrandAndSKUFromSpecs(t *testing.T) {
	p, err := ExtractProduct(productPage, "https://example.com/p1/")

	require.NoError(t, err)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Acme", *p.Brand)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "987654", *p.SKU)
}

func TestExtractProduct_LinkedDataWinsOverSpecs(t *testing.T) {
	markup := `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Phone","brand":{"@type":"Brand","name":"Samsung"},"sku":"SM-A556"}
</script>
</head><body>
<h1>Samsung Galaxy A55</h1>
<table><tr><th>Виробник</th><td>WrongBrand</td></tr></table>
</body></html>`

	p, err := ExtractProduct(markup, "https://example.com/p2/")

	require.NoError(t, err)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Samsung", *p.Brand)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "SM-A556", *p.SKU)
}

func TestExtractProduct_LinkedDataGraphAndTypeList(t *testing.T) {
	markup := `<html><head>
<script type="application/ld+json">
{"@graph":[
  {"@type":"BreadcrumbList"},
  {"@type":["Product","Thing"],"brand":"Xiaomi","offers":{"@type":"Offer","sku":"XM-13T"}}
]}
</script>
</head><body><h1>Xiaomi 13T</h1></body></html>`

	p, err := ExtractProduct(markup, "https://example.com/p3/")

	require.NoError(t, err)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Xiaomi", *p.Brand)
	require.NotNil(t, p.SKU)
	assert.Equal(t, "XM-13T", *p.SKU)
}

func TestExtractProduct_BrandFallsBackToTitleToken(t *testing.T) {
	p, err := ExtractProduct("<html><body><h1>Lenovo IdeaPad 3</h1></body></html>", "https://example.com/p4/")

	require.NoError(t, err)
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Lenovo", *p.Brand)
	assert.Nil(t, p.SKU)
}

func TestExtractProduct_MissingTitle(t *testing.T) {
	p, err := ExtractProduct("<html><body><p>nothing here</p></body></html>", "https://example.com/cart/")

	require.NoError(t, err)
	assert.Equal(t, UnknownTitle, p.Title)
	// No real title means no title-token brand guess either.
	assert.Nil(t, p.Brand)
	assert.Nil(t, p.ExternalID)
}

func TestExtractProduct_DefinitionListSpecs(t *testing.T) {
	markup := `<html><body>
<h1>Ноутбук</h1>
<dl>
  <dt>Модель</dt><dd>AB-123</dd>
  <dt>Колір</dt><dd>сірий</dd>
</dl>
</body></html>`

	p, err := ExtractProduct(markup, "https://example.com/p5/")

	require.NoError(t, err)
	assert.Equal(t, "AB-123", p.Specs["Модель"])
	assert.Equal(t, "сірий", p.Specs["Колір"])
	require.NotNil(t, p.SKU)
	assert.Equal(t, "AB-123", *p.SKU)
}
