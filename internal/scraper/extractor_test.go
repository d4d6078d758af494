package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/pkg/logger"
)

const quotePageHTML = `<!DOCTYPE html>
<html>
<head><title>Apple Inc. (AAPL) Stock Price, News, Quote</title></head>
<body>
<h1>Apple Inc. (AAPL)</h1>
<fin-streamer data-symbol="AAPL" data-field="regularMarketPrice" value="150.25">150.25</fin-streamer>
<fin-streamer data-symbol="AAPL" data-field="regularMarketChange" value="2.15">+2.15</fin-streamer>
<fin-streamer data-symbol="AAPL" data-field="regularMarketChangePercent" value="1.45">+1.45%</fin-streamer>
<ul>
<li><span>Previous Close</span><span data-testid="PREV_CLOSE-value">148.10</span></li>
<li><span>Open</span><span data-testid="OPEN-value">148.50</span></li>
<li><span>Day's Range</span><span data-testid="DAYS_RANGE-value">147.80 - 151.20</span></li>
<li><span>52 Week Range</span><span data-testid="FIFTY_TWO_WK_RANGE-value">124.17 - 199.62</span></li>
<li><span>Volume</span><span data-testid="TD_VOLUME-value">52,416,025</span></li>
<li><span>Avg. Volume</span><span data-testid="AVERAGE_VOLUME_3MONTH-value">59.3M</span></li>
<li><span>Market Cap</span><span data-testid="MARKET_CAP-value">2.85T</span></li>
<li><span>PE Ratio (TTM)</span><span data-testid="PE_RATIO-value">29.45</span></li>
<li><span>EPS (TTM)</span><span data-testid="EPS_RATIO-value">5.10</span></li>
<li><span>Beta (5Y Monthly)</span><span data-testid="BETA_5Y-value">1.28</span></li>
<li><span>Forward Dividend &amp; Yield</span><span data-testid="DIVIDEND_AND_YIELD-value">0.92 (0.52%)</span></li>
</ul>
</body>
</html>`

func parseDoc(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := NewDocument(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newTestExtractor() *Extractor {
	return NewExtractor(DefaultValidationBounds(), logger.NewNop())
}

func TestExtractCurrentPriceFromAttribute(t *testing.T) {
	doc := parseDoc(t, quotePageHTML)
	e := newTestExtractor()

	raw, ok := e.Extract(doc, "AAPL", FieldCurrentPrice)
	require.True(t, ok)
	assert.Equal(t, "150.25", raw)

	price := e.Price(doc, "AAPL", FieldCurrentPrice)
	require.NotNil(t, price)
	assert.Equal(t, 150.25, *price)
}

func TestExtractCompanyNameStripsSymbolSuffix(t *testing.T) {
	doc := parseDoc(t, quotePageHTML)
	e := newTestExtractor()

	name := e.Text(doc, "AAPL", FieldCompanyName)
	require.NotNil(t, name)
	assert.Equal(t, "Apple Inc.", *name)
}

func TestExtractStatisticsFields(t *testing.T) {
	doc := parseDoc(t, quotePageHTML)
	e := newTestExtractor()

	prevClose := e.Price(doc, "AAPL", FieldPreviousClose)
	require.NotNil(t, prevClose)
	assert.Equal(t, 148.10, *prevClose)

	volume := e.Volume(doc, "AAPL", FieldVolume)
	require.NotNil(t, volume)
	assert.Equal(t, int64(52416025), *volume)

	avgVolume := e.Volume(doc, "AAPL", FieldAvgVolume)
	require.NotNil(t, avgVolume)
	assert.Equal(t, int64(59300000), *avgVolume)

	pe := e.Signed(doc, "AAPL", FieldPERatio)
	require.NotNil(t, pe)
	assert.Equal(t, 29.45, *pe)
}

func TestExtractAbsentFieldReturnsFalse(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>nothing here</p></body></html>`)
	e := newTestExtractor()

	_, ok := e.Extract(doc, "AAPL", FieldCurrentPrice)
	assert.False(t, ok)
	assert.Nil(t, e.Price(doc, "AAPL", FieldCurrentPrice))
	assert.Nil(t, e.Text(doc, "AAPL", FieldCompanyName))
}

func TestSuccessCacheRemembersWinningStrategy(t *testing.T) {
	doc := parseDoc(t, quotePageHTML)
	e := newTestExtractor()

	_, ok := e.Extract(doc, "AAPL", FieldPreviousClose)
	require.True(t, ok)

	cached, found := e.successCache.Get("AAPL_previous_close")
	require.True(t, found)
	assert.Equal(t, "css_selector", cached)

	// A later page without the testid element evicts the stale entry and
	// falls back to the table scan.
	tablePage := `<html><body><table>
<tr><td>Previous Close</td><td>147.00</td></tr>
</table></body></html>`
	raw, ok := e.Extract(parseDoc(t, tablePage), "AAPL", FieldPreviousClose)
	require.True(t, ok)
	assert.Equal(t, "147.00", raw)

	cached, found = e.successCache.Get("AAPL_previous_close")
	require.True(t, found)
	assert.Equal(t, "table", cached)
}

func TestValidationRejectsImplausibleValues(t *testing.T) {
	page := `<html><body>
<fin-streamer data-symbol="AAPL" data-field="regularMarketPrice" value="99999.99">99999.99</fin-streamer>
<h1>42</h1>
</body></html>`
	doc := parseDoc(t, page)
	e := newTestExtractor()

	// Price above the plausible maximum is treated as absent.
	assert.Nil(t, e.Price(doc, "AAPL", FieldCurrentPrice))

	// A purely numeric header is not a company name.
	assert.Nil(t, e.Text(doc, "AAPL", FieldCompanyName))
}

func TestTableStrategyFallback(t *testing.T) {
	page := `<html><body><table>
<tr><td>Market Cap</td><td>150.2B</td></tr>
<tr><td>PE Ratio (TTM)</td><td>24.50</td></tr>
</table></body></html>`
	doc := parseDoc(t, page)
	e := newTestExtractor()

	raw, ok := e.Extract(doc, "AAPL", FieldMarketCap)
	require.True(t, ok)
	assert.Equal(t, "150.2B", raw)

	pe := e.Signed(doc, "AAPL", FieldPERatio)
	require.NotNil(t, pe)
	assert.Equal(t, 24.50, *pe)
}
