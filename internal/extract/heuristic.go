package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fieldCandidate is one pure lookup in an ordered cascade; the first
// candidate returning a non-empty value wins the field.
type fieldCandidate func(doc *goquery.Document) string

func selText(selector string) fieldCandidate {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

func selAttr(selector, attr string) fieldCandidate {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

var (
	nameCandidates = []fieldCandidate{
		selText(`[data-testid="doctor-name"]`),
		selText(`h1[itemprop="name"]`),
		selText(`h1`),
		selAttr(`meta[property="og:title"]`, "content"),
	}
	specialtyCandidates = []fieldCandidate{
		selText(`[data-testid="doctor-expertise"]`),
		selText(`[itemprop="medicalSpecialty"]`),
		selText(`h1 + p`),
		selText(`h2`),
	}
	centerNameCandidates = []fieldCandidate{
		selText(`[data-testid="center-name"]`),
		selText(`[itemprop="legalName"]`),
		selText(`h3`),
	}
	addressCandidates = []fieldCandidate{
		selText(`[data-testid="center-address"]`),
		selText(`[itemprop="address"]`),
		selText(`address`),
	}
	phoneCandidates = []fieldCandidate{
		selText(`[data-testid="center-phone"]`),
		selText(`[itemprop="telephone"]`),
		selAttr(`a[href^="tel:"]`, "href"),
	}
)

func firstMatch(doc *goquery.Document, cands []fieldCandidate) string {
	for _, c := range cands {
		if v := c(doc); v != "" {
			return v
		}
	}
	return ""
}

// heuristicFields is the display-field half of the heuristic pass.
type heuristicFields struct {
	Name       string
	Specialty  string
	CenterName string
	Address    string
	Phone      string
}

func parseHeuristicFields(doc *goquery.Document) heuristicFields {
	return heuristicFields{
		Name:       firstMatch(doc, nameCandidates),
		Specialty:  firstMatch(doc, specialtyCandidates),
		CenterName: firstMatch(doc, centerNameCandidates),
		Address:    firstMatch(doc, addressCandidates),
		Phone:      strings.TrimPrefix(firstMatch(doc, phoneCandidates), "tel:"),
	}
}

// keyVariants expands a snake_case identifier key into the spellings seen
// across page versions: snake_case, camelCase and kebab-case.
func keyVariants(snake string) []string {
	parts := strings.Split(snake, "_")
	camel := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		camel += strings.ToUpper(p[:1]) + p[1:]
	}
	return []string{snake, camel, strings.ReplaceAll(snake, "_", "-")}
}

// scanIdentifier searches raw markup/script text for one opaque identifier,
// trying each key spelling against JSON-style keys, data attributes and form
// field values, in that order. First match wins.
func scanIdentifier(html, snakeKey string) string {
	for _, key := range keyVariants(snakeKey) {
		patterns := []string{
			`["']` + regexp.QuoteMeta(key) + `["']\s*:\s*["']?([A-Za-z0-9\-]+)`,
			`data-` + regexp.QuoteMeta(strings.ReplaceAll(key, "_", "-")) + `=["']([^"']+)["']`,
			`name=["']` + regexp.QuoteMeta(key) + `["'][^>]*value=["']([^"']+)["']`,
			`value=["']([^"']+)["'][^>]*name=["']` + regexp.QuoteMeta(key) + `["']`,
		}
		for _, p := range patterns {
			re := regexp.MustCompile(p)
			if m := re.FindStringSubmatch(html); len(m) == 2 && m[1] != "" && m[1] != "null" {
				return m[1]
			}
		}
	}
	return ""
}

// heuristicIdentifiers is the opaque-identifier half of the heuristic pass,
// independent of the field cascade.
type heuristicIdentifiers struct {
	DoctorID     string
	CenterID     string
	UserCenterID string
	ServiceID    string
}

func parseHeuristicIdentifiers(html string) heuristicIdentifiers {
	return heuristicIdentifiers{
		DoctorID:     scanIdentifier(html, "doctor_id"),
		CenterID:     scanIdentifier(html, "center_id"),
		UserCenterID: scanIdentifier(html, "user_center_id"),
		ServiceID:    scanIdentifier(html, "service_id"),
	}
}
