package extract

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// placeholderID derives a deterministic stand-in identifier from the profile
// slug. The prefix keeps it recognizable everywhere downstream so a bundle
// built on placeholders is never mistaken for a working one.
func placeholderID(slug, kind string) string {
	sum := sha1.Sum([]byte(slug + ":" + kind))
	return domain.PlaceholderPrefix + hex.EncodeToString(sum[:])[:10]
}
