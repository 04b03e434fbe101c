package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyVariants(t *testing.T) {
	assert.Equal(t, []string{"user_center_id", "userCenterId", "user-center-id"}, keyVariants("user_center_id"))
	assert.Equal(t, []string{"center_id", "centerId", "center-id"}, keyVariants("center_id"))
}

func TestScanIdentifier_KeySpellings(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"snake json", `<script>var cfg = {"center_id": "5f1a2b3c"};</script>`},
		{"camel json", `<script>window.__APP={"centerId":"5f1a2b3c"}</script>`},
		{"single quotes", `<script>var c = {'center_id': '5f1a2b3c'}</script>`},
		{"data attribute", `<div data-center-id="5f1a2b3c"></div>`},
		{"form field", `<input name="center_id" type="hidden" value="5f1a2b3c">`},
		{"value before name", `<input value="5f1a2b3c" name="center_id">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "5f1a2b3c", scanIdentifier(tt.html, "center_id"))
		})
	}
}

func TestScanIdentifier_Missing(t *testing.T) {
	assert.Empty(t, scanIdentifier(`<div>nothing here</div>`, "center_id"))
	assert.Empty(t, scanIdentifier(`<script>{"center_id": null}</script>`, "center_id"))
}

func TestParseHeuristicFields_CascadeOrder(t *testing.T) {
	// Both a testid node and an h1 exist; the testid candidate is earlier in
	// the cascade and must win.
	html := `<html><body>
		<h1>Fallback Name</h1>
		<div data-testid="doctor-name">Dr Primary</div>
		<h2>Cardiology</h2>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	fields := parseHeuristicFields(doc)
	assert.Equal(t, "Dr Primary", fields.Name)
	assert.Equal(t, "Cardiology", fields.Specialty)
}

func TestParseHeuristicFields_PhoneFromTelLink(t *testing.T) {
	html := `<html><body><h1>Dr X</h1><a href="tel:02112345678">call</a></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	fields := parseHeuristicFields(doc)
	assert.Equal(t, "02112345678", fields.Phone)
}
