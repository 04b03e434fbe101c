package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchProfilePage(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

const structuredPage = `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{
  "information":{"id":9182,"display_name":"دکتر Test"},
  "expertises":[{"alias_title":"Cardiology"}],
  "centers":[{
    "id":"c-100","user_center_id":"uc-200","name":"Heart Clinic",
    "address":"Tehran","display_number":"021555",
    "services":[{"id":"s-300","alias_title":"visit"}]
  }]
}}}
</script></body></html>`

func newTestExtractor(f PageFetcher) *Extractor {
	return New(f, testHost, 0, zap.NewNop())
}

func TestExtract_StructuredAuthoritative(t *testing.T) {
	e := newTestExtractor(&fakeFetcher{html: structuredPageWithHeuristicNoise()})

	bundle, err := e.Extract(context.Background(), "doctor-test-1")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceStructured, bundle.Source)
	assert.False(t, bundle.NonFunctional)
	assert.Equal(t, "دکتر Test", bundle.Doctor.Name)
	assert.Equal(t, "9182", bundle.Doctor.ProviderID)
	require.Len(t, bundle.Doctor.Centers, 1)
	assert.Equal(t, "c-100", bundle.Doctor.Centers[0].CenterID)
	assert.Equal(t, "uc-200", bundle.Doctor.Centers[0].UserCenterID)
	require.Len(t, bundle.Doctor.Centers[0].Services, 1)
	assert.Equal(t, "s-300", bundle.Doctor.Centers[0].Services[0].ServiceID)
}

// structured block plus markup the heuristic pass would read differently;
// the structured result must win.
func structuredPageWithHeuristicNoise() string {
	return structuredPage + `<h1>Wrong Name</h1><script>{"center_id":"wrong"}</script>`
}

func TestExtract_HeuristicWithIdentifiers(t *testing.T) {
	html := `<html><body>
		<h1>Dr Heuristic</h1><h2>Dermatology</h2>
		<script>var cfg={"doctor_id":"d1","centerId":"c1","user_center_id":"u1","service_id":"s1"};</script>
	</body></html>`
	e := newTestExtractor(&fakeFetcher{html: html})

	bundle, err := e.Extract(context.Background(), "doctor-test-2")
	require.NoError(t, err)

	assert.Equal(t, domain.SourceHeuristic, bundle.Source)
	assert.False(t, bundle.NonFunctional)
	assert.Equal(t, "Dr Heuristic", bundle.Doctor.Name)
	assert.Equal(t, "Dermatology", bundle.Doctor.Specialty)
	assert.Equal(t, "c1", bundle.Doctor.Centers[0].CenterID)
	assert.True(t, Validate(bundle))
}

func TestExtract_PlaceholderFallbackIsNonFunctional(t *testing.T) {
	// Name and specialty present, none of the four identifiers.
	html := `<html><body><h1>Dr NoIDs</h1><h2>Oncology</h2></body></html>`
	e := newTestExtractor(&fakeFetcher{html: html})

	bundle, err := e.Extract(context.Background(), "doctor-test-3")
	require.NoError(t, err)

	assert.True(t, bundle.NonFunctional)
	assert.True(t, Validate(bundle), "placeholder bundle still validates structurally")

	center := bundle.Doctor.Centers[0]
	assert.True(t, domain.IsPlaceholder(center.CenterID))
	assert.True(t, domain.IsPlaceholder(center.UserCenterID))
	assert.True(t, domain.IsPlaceholder(center.Services[0].ServiceID))
	assert.False(t, center.Pollable(center.Services[0]), "placeholder ids must not be pollable")

	// Deterministic: same slug, same placeholders.
	again, err := e.Extract(context.Background(), "doctor-test-3")
	require.NoError(t, err)
	assert.Equal(t, center.CenterID, again.Doctor.Centers[0].CenterID)
}

func TestExtract_UnrecognizedPageIsTotalFailure(t *testing.T) {
	html := `<html><body><div class="error">totally different site</div></body></html>`
	e := newTestExtractor(&fakeFetcher{html: html})

	_, err := e.Extract(context.Background(), "doctor-test-4")
	require.Error(t, err)

	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ReasonUnrecognized, ee.Reason)
}

func TestExtract_BadURLSurfacesValidationError(t *testing.T) {
	e := newTestExtractor(&fakeFetcher{})
	_, err := e.Extract(context.Background(), "https://evil.example/dr/x/")

	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestFetchWithRetry_NetworkOnly(t *testing.T) {
	netErr := &Error{Reason: ReasonNetwork, Err: errors.New("timeout")}
	f := &fakeFetcher{err: netErr}
	e := New(f, testHost, 2, zap.NewNop())

	_, err := e.Extract(context.Background(), "doctor-test-5")
	require.Error(t, err)
	assert.Equal(t, 3, f.calls, "one attempt plus two retries")

	nf := &fakeFetcher{err: &Error{Reason: ReasonNotFound, Err: errors.New("404")}}
	e = New(nf, testHost, 2, zap.NewNop())
	_, err = e.Extract(context.Background(), "doctor-test-6")
	require.Error(t, err)
	assert.Equal(t, 1, nf.calls, "not-found is terminal, no retry")
}
