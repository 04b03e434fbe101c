package p24

import (
	"fmt"
	"math/rand"
	"time"
)

const terminalPrefix = "slothunter"

// NewTerminalID generates a fresh per-burst terminal identifier. The backend
// only requires it to be unique within one round of day/slot calls, so a
// millisecond timestamp plus a short random suffix is enough; it is never
// persisted or reused across polling passes.
func NewTerminalID() string {
	return fmt.Sprintf("%s-%d-%04d", terminalPrefix, time.Now().UnixMilli(), rand.Intn(10000))
}
