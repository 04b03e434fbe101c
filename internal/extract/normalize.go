package extract

import (
	"net/url"
	"strings"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// Normalize turns whatever a user pasted (a full profile URL, a path
// fragment, or a bare slug) into the canonical profile URL and its decoded
// slug. It rejects input whose host is not the expected provider, and it is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw, providerHost string) (canonical, slug string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", &domain.ValidationError{Field: "url", Reason: "empty input"}
	}

	var path string
	switch {
	case strings.Contains(raw, "://"):
		u, perr := url.Parse(raw)
		if perr != nil {
			return "", "", &domain.ValidationError{Field: "url", Reason: "unparseable url"}
		}
		if !hostMatches(u.Host, providerHost) {
			return "", "", &domain.ValidationError{Field: "url", Reason: "host is not " + providerHost}
		}
		path = u.Path
	case strings.Contains(raw, "/"):
		trimmed := strings.TrimPrefix(raw, "/")
		// A leading host-like segment without a scheme still names a host.
		if first := strings.SplitN(trimmed, "/", 2)[0]; strings.Contains(first, ".") {
			if !hostMatches(first, providerHost) {
				return "", "", &domain.ValidationError{Field: "url", Reason: "host is not " + providerHost}
			}
			trimmed = strings.TrimPrefix(trimmed, first)
		}
		path = "/" + strings.TrimPrefix(trimmed, "/")
	default:
		// bare slug
		path = "/dr/" + raw
	}

	slug, err = slugFromPath(path)
	if err != nil {
		return "", "", err
	}
	return "https://" + providerHost + "/dr/" + slug + "/", slug, nil
}

// slugFromPath pulls the profile slug out of a URL path, percent-decoding it.
// The slug is the segment after "dr" when present, otherwise the last
// non-empty segment.
func slugFromPath(path string) (string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	slug := ""
	for i, s := range segs {
		if s == "dr" && i+1 < len(segs) {
			slug = segs[i+1]
			break
		}
	}
	if slug == "" && len(segs) > 0 {
		slug = segs[len(segs)-1]
	}
	if slug == "" {
		return "", &domain.ValidationError{Field: "url", Reason: "no slug in path"}
	}
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		// Malformed escapes: keep the raw form rather than failing, the
		// provider accepts both.
		decoded = slug
	}
	return decoded, nil
}

func hostMatches(host, providerHost string) bool {
	return stripWWW(strings.ToLower(host)) == stripWWW(strings.ToLower(providerHost))
}

func stripWWW(h string) string {
	return strings.TrimPrefix(h, "www.")
}
