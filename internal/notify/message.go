package notify

import (
	"fmt"
	"strings"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

const maxListedSlots = 5

// FormatAlert renders one discovery alert. Slots arrive in chronological
// order; only the first few are listed, the rest are summarized.
func FormatAlert(providerHost string, doctor domain.Doctor, slots []domain.AppointmentSlot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎯 Open appointments: %s", doctor.Name)
	if doctor.Specialty != "" {
		fmt.Fprintf(&b, " (%s)", doctor.Specialty)
	}
	fmt.Fprintf(&b, "\n%d slot(s) available\n\n", len(slots))

	for i, s := range slots {
		if i == maxListedSlots {
			fmt.Fprintf(&b, "… and %d more\n", len(slots)-maxListedSlots)
			break
		}
		fmt.Fprintf(&b, "• %s – %s\n",
			s.From.Format("Mon 2006-01-02 15:04"),
			s.To.Format("15:04"))
	}

	fmt.Fprintf(&b, "\nBook here: https://%s/dr/%s/", providerHost, doctor.Slug)
	return b.String()
}
