package domain

// BundleSource records which extraction pass produced a ProfileBundle.
type BundleSource string

const (
	SourceStructured BundleSource = "structured"
	SourceHeuristic  BundleSource = "heuristic"
)

// ProfileBundle is the outcome of extracting one public profile page:
// the doctor tree plus provenance. NonFunctional marks bundles whose
// identifiers are slug-hash placeholders; such bundles must be stored
// inactive and excluded from polling until corrected by hand.
type ProfileBundle struct {
	Doctor        Doctor
	Source        BundleSource
	NonFunctional bool
}
