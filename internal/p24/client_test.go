package p24

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

func testUnit() (domain.Center, domain.Service) {
	center := domain.Center{CenterID: "c-1", UserCenterID: "uc-1"}
	svc := domain.Service{ServiceID: "s-1"}
	return center, svc
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, zap.NewNop()), srv
}

func TestListOpenDays_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getFreeDays" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		for _, field := range []string{"center_id", "user_center_id", "service_id", "terminal_id"} {
			if r.PostFormValue(field) == "" {
				t.Errorf("missing form field %s", field)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 1, "calendar_days": []int64{1700000000, 1700086400},
		})
	})

	center, svc := testUnit()
	days, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("want 2 days, got %v", days)
	}
}

func TestListOpenDays_NonSuccessStatusIsNoData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": 0})
	})

	center, svc := testUnit()
	days, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	if err != nil {
		t.Fatalf("backend-declined must not be an error, got %v", err)
	}
	if days != nil {
		t.Fatalf("want no days, got %v", days)
	}
}

func TestListOpenDays_HTTPErrorIsNoData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	center, svc := testUnit()
	days, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	if err != nil {
		t.Fatalf("http-level error must map to no data, got %v", err)
	}
	if len(days) != 0 {
		t.Fatalf("want no days, got %v", days)
	}
}

func TestListOpenDays_MalformedBodyIsProtocolError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	})

	center, svc := testUnit()
	_, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	var pe *domain.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("want ProtocolError, got %v", err)
	}
}

func TestListOpenDays_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refused connection from here on
	client := New(srv.URL, time.Second, zap.NewNop())

	center, svc := testUnit()
	_, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
}

func TestListOpenDays_RejectsPlaceholderIdentifiers(t *testing.T) {
	client := New("http://unused.invalid", time.Second, zap.NewNop())

	center := domain.Center{CenterID: domain.PlaceholderPrefix + "abc", UserCenterID: "uc-1"}
	svc := domain.Service{ServiceID: "s-1"}
	_, err := client.ListOpenDays(context.Background(), center, svc, NewTerminalID())
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for placeholder ids, got %v", err)
	}
}

func TestListSlotsForDay_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getFreeTurns" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.PostFormValue("date") == "" {
			t.Error("missing date field")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 1,
			"result": []map[string]any{
				{"from": 1700000000, "to": 1700000900, "workhour_turn_num": 3},
			},
		})
	})

	center, svc := testUnit()
	slots, err := client.ListSlotsForDay(context.Background(), center, svc, NewTerminalID(), time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 || slots[0].Turn != 3 {
		t.Fatalf("unexpected slots %v", slots)
	}
	if !slots[0].From.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("bad from time %v", slots[0].From)
	}
}

func TestHoldAndRelease(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/suspend":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 1, "request_code": "rq-77"})
		case "/unsuspend":
			if r.PostFormValue("request_code") != "rq-77" {
				t.Errorf("wrong request code %q", r.PostFormValue("request_code"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 1})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	center, svc := testUnit()
	slot := domain.AppointmentSlot{From: time.Unix(1700000000, 0), To: time.Unix(1700000900, 0)}

	code, err := client.HoldSlot(context.Background(), center, svc, NewTerminalID(), slot)
	if err != nil {
		t.Fatalf("hold failed: %v", err)
	}
	if code != "rq-77" {
		t.Fatalf("want rq-77, got %s", code)
	}
	if err := client.ReleaseHold(context.Background(), center, code); err != nil {
		t.Fatalf("release failed: %v", err)
	}
}

var terminalRe = regexp.MustCompile(`^slothunter-\d{13}-\d{4}$`)

func TestNewTerminalID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewTerminalID()
		if !terminalRe.MatchString(id) {
			t.Fatalf("unexpected terminal id format: %s", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Fatal("terminal ids should vary within a burst")
	}
}
