package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// flexID accepts the provider's habit of serializing the same identifier as
// either a JSON string or a bare number depending on page version.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

// nextData mirrors the slice of the embedded structured-data block the
// extractor cares about. Unknown fields are ignored.
type nextData struct {
	Props struct {
		PageProps struct {
			Information struct {
				ID          flexID `json:"id"`
				DisplayName string `json:"display_name"`
			} `json:"information"`
			Expertises []struct {
				AliasTitle string `json:"alias_title"`
			} `json:"expertises"`
			Centers []struct {
				ID           flexID `json:"id"`
				UserCenterID flexID `json:"user_center_id"`
				Name         string `json:"name"`
				Address      string `json:"address"`
				Tel          string `json:"display_number"`
				Services     []struct {
					ID         flexID `json:"id"`
					AliasTitle string `json:"alias_title"`
				} `json:"services"`
			} `json:"centers"`
		} `json:"pageProps"`
	} `json:"props"`
}

// parseStructured looks for the single embedded structured-data block. When
// it is present and internally consistent (id, display name, at least one
// center with at least one service), it is authoritative and the heuristic
// pass is skipped entirely. Returns nil when the block is absent or unusable.
func parseStructured(doc *goquery.Document, slug string) *domain.ProfileBundle {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var nd nextData
	if err := json.Unmarshal([]byte(raw), &nd); err != nil {
		return nil
	}

	info := nd.Props.PageProps.Information
	if info.ID == "" || info.DisplayName == "" {
		return nil
	}

	doctor := domain.Doctor{
		Name:       info.DisplayName,
		Slug:       slug,
		ProviderID: string(info.ID),
	}
	if len(nd.Props.PageProps.Expertises) > 0 {
		doctor.Specialty = nd.Props.PageProps.Expertises[0].AliasTitle
	}

	for _, c := range nd.Props.PageProps.Centers {
		center := domain.Center{
			CenterID:     string(c.ID),
			UserCenterID: string(c.UserCenterID),
			Name:         c.Name,
			Address:      c.Address,
			Phone:        c.Tel,
		}
		for _, s := range c.Services {
			if s.ID == "" {
				continue
			}
			center.Services = append(center.Services, domain.Service{
				ServiceID: string(s.ID),
				Name:      s.AliasTitle,
			})
		}
		if center.CenterID != "" && center.UserCenterID != "" && len(center.Services) > 0 {
			doctor.Centers = append(doctor.Centers, center)
		}
	}
	if len(doctor.Centers) == 0 {
		return nil
	}

	return &domain.ProfileBundle{Doctor: doctor, Source: domain.SourceStructured}
}
