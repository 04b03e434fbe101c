// Package extract turns a shared profile URL into the identifier bundle the
// booking protocol client needs: normalize, fetch, structured parse,
// heuristic parse, placeholder fallback, validate.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// PageFetcher is how the extractor obtains raw profile HTML.
type PageFetcher interface {
	FetchProfilePage(ctx context.Context, canonicalURL string) (string, error)
}

// Extractor runs the full extraction pipeline for one profile URL.
type Extractor struct {
	fetcher      PageFetcher
	providerHost string
	maxRetries   int
	log          *zap.Logger
}

func New(fetcher PageFetcher, providerHost string, maxRetries int, log *zap.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, providerHost: providerHost, maxRetries: maxRetries, log: log}
}

// Extract resolves rawURL into a ProfileBundle or a structured failure.
// A bundle flagged NonFunctional carries placeholder identifiers and must be
// kept out of polling until corrected.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*domain.ProfileBundle, error) {
	canonical, slug, err := Normalize(rawURL, e.providerHost)
	if err != nil {
		return nil, err
	}

	html, err := e.fetchWithRetry(ctx, canonical)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Reason: ReasonUnrecognized, Err: err}
	}

	if bundle := parseStructured(doc, slug); bundle != nil {
		if !Validate(bundle) {
			return nil, &Error{Reason: ReasonUnrecognized, Err: errors.New("structured block incomplete")}
		}
		e.log.Info("profile extracted",
			zap.String("slug", slug), zap.String("source", string(bundle.Source)))
		return bundle, nil
	}

	bundle, err := e.heuristic(doc, html, slug)
	if err != nil {
		return nil, err
	}
	e.log.Info("profile extracted",
		zap.String("slug", slug),
		zap.String("source", string(bundle.Source)),
		zap.Bool("non_functional", bundle.NonFunctional))
	return bundle, nil
}

// fetchWithRetry re-attempts the page fetch on network failures only; a 404
// or an unrecognized page will not get better by asking again.
func (e *Extractor) fetchWithRetry(ctx context.Context, canonical string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		html, err := e.fetcher.FetchProfilePage(ctx, canonical)
		if err == nil {
			return html, nil
		}
		lastErr = err

		var ee *Error
		if errors.As(err, &ee) && ee.Reason != ReasonNetwork {
			return "", err
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

// heuristic assembles a bundle from the independent field and identifier
// scans, falling back to slug-derived placeholders for whatever the page did
// not yield.
func (e *Extractor) heuristic(doc *goquery.Document, html, slug string) (*domain.ProfileBundle, error) {
	fields := parseHeuristicFields(doc)
	ids := parseHeuristicIdentifiers(html)

	// Neither name nor specialty recognized means the page shape is foreign;
	// that is total failure, not partial success.
	if fields.Name == "" && fields.Specialty == "" {
		return nil, &Error{Reason: ReasonUnrecognized, Err: fmt.Errorf("no profile fields recognized")}
	}

	nonFunctional := false
	fill := func(got, kind string) string {
		if got != "" {
			return got
		}
		nonFunctional = true
		return placeholderID(slug, kind)
	}

	name := fields.Name
	if name == "" {
		name = slug
	}
	centerName := fields.CenterName
	if centerName == "" {
		centerName = "unknown"
	}

	bundle := &domain.ProfileBundle{
		Doctor: domain.Doctor{
			Name:       name,
			Slug:       slug,
			ProviderID: fill(ids.DoctorID, "doctor"),
			Specialty:  fields.Specialty,
			Centers: []domain.Center{{
				CenterID:     fill(ids.CenterID, "center"),
				UserCenterID: fill(ids.UserCenterID, "user_center"),
				Name:         centerName,
				Address:      fields.Address,
				Phone:        fields.Phone,
				Services: []domain.Service{{
					ServiceID: fill(ids.ServiceID, "service"),
					Name:      "visit",
				}},
			}},
		},
		Source:        domain.SourceHeuristic,
		NonFunctional: nonFunctional,
	}

	if !Validate(bundle) {
		return nil, &Error{Reason: ReasonUnrecognized, Err: errors.New("heuristic bundle incomplete")}
	}
	return bundle, nil
}

// Validate checks the structural minimum of a bundle: a name, a slug, and at
// least one center with at least one service. Specialty, address and phone
// may be empty.
func Validate(b *domain.ProfileBundle) bool {
	if b == nil || b.Doctor.Name == "" || b.Doctor.Slug == "" {
		return false
	}
	for _, c := range b.Doctor.Centers {
		if len(c.Services) > 0 {
			return true
		}
	}
	return false
}
