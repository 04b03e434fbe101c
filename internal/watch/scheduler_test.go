package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/notify"
)

type fakeClient struct {
	days      map[string][]int64                 // center id -> raw days
	slots     map[int64][]domain.AppointmentSlot // day unix -> slots
	daysErr   error
	terminals map[string][]string // center id -> terminal ids seen
}

func (f *fakeClient) ListOpenDays(_ context.Context, center domain.Center, _ domain.Service, terminalID string) ([]int64, error) {
	if f.terminals == nil {
		f.terminals = map[string][]string{}
	}
	f.terminals[center.CenterID] = append(f.terminals[center.CenterID], terminalID)
	if f.daysErr != nil {
		return nil, f.daysErr
	}
	return f.days[center.CenterID], nil
}

func (f *fakeClient) ListSlotsForDay(_ context.Context, _ domain.Center, _ domain.Service, _ string, day time.Time) ([]domain.AppointmentSlot, error) {
	return f.slots[day.Unix()], nil
}

type fakeCatalog struct {
	doctors []domain.Doctor
	touched []int64
}

func (f *fakeCatalog) ListActiveDoctors(_ context.Context) ([]domain.Doctor, error) {
	return f.doctors, nil
}

func (f *fakeCatalog) TouchDoctorChecked(_ context.Context, id int64, _ time.Time) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeCatalog) GetDoctor(_ context.Context, id int64) (*domain.Doctor, error) {
	for i := range f.doctors {
		if f.doctors[i].ID == id {
			return &f.doctors[i], nil
		}
	}
	return nil, errors.New("doctor not found")
}

type notifyCall struct {
	doctorID int64
	slots    int
}

type fakeNotifier struct {
	calls []notifyCall
}

func (f *fakeNotifier) Notify(_ context.Context, d domain.Doctor, slots []domain.AppointmentSlot) (notify.DeliveryReport, error) {
	f.calls = append(f.calls, notifyCall{doctorID: d.ID, slots: len(slots)})
	return notify.DeliveryReport{Subscribers: 1, Delivered: 1}, nil
}

func testDoctor(id int64) domain.Doctor {
	return domain.Doctor{
		ID: id, Name: "Dr Test", Slug: "dr-test", Active: true,
		Centers: []domain.Center{{
			CenterID: "c-1", UserCenterID: "uc-1",
			Services: []domain.Service{{ServiceID: "s-1"}},
		}},
	}
}

// Scenario: two open days within the window, one with two slots and one
// empty. The aggregate is two slots and the fan-out sees them once.
func TestRunCycle_AggregatesAndNotifiesOnce(t *testing.T) {
	now := time.Now().UTC()
	d1 := now.Add(24 * time.Hour).Truncate(time.Second)
	d2 := now.Add(48 * time.Hour).Truncate(time.Second)

	client := &fakeClient{
		days: map[string][]int64{"c-1": {d1.Unix(), d2.Unix()}},
		slots: map[int64][]domain.AppointmentSlot{
			d1.Unix(): {
				{From: d1.Add(9 * time.Hour), To: d1.Add(9*time.Hour + 15*time.Minute), Turn: 1},
				{From: d1.Add(10 * time.Hour), To: d1.Add(10*time.Hour + 15*time.Minute), Turn: 2},
			},
		},
	}
	catalog := &fakeCatalog{doctors: []domain.Doctor{testDoctor(1)}}
	notifier := &fakeNotifier{}

	s := NewScheduler(catalog, NewChecker(client, 7, zap.NewNop()), notifier, time.Minute, zap.NewNop())
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	result := report.Doctors[1]
	assert.Equal(t, 2, result.SlotCount())
	assert.False(t, result.Failed())

	require.Len(t, notifier.calls, 1, "fan-out invoked exactly once per cycle")
	assert.Equal(t, notifyCall{doctorID: 1, slots: 2}, notifier.calls[0])
	assert.Equal(t, []int64{1}, catalog.touched)
}

func TestRunCycle_AllUnitsFailedNeverNotified(t *testing.T) {
	client := &fakeClient{daysErr: &domain.TransportError{Op: "getFreeDays", Err: errors.New("timeout")}}
	catalog := &fakeCatalog{doctors: []domain.Doctor{testDoctor(1)}}
	notifier := &fakeNotifier{}

	s := NewScheduler(catalog, NewChecker(client, 7, zap.NewNop()), notifier, time.Minute, zap.NewNop())
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err, "unit failures must not raise to the scheduler")

	result := report.Doctors[1]
	assert.Equal(t, 0, result.SlotCount())
	assert.True(t, result.Failed())
	assert.Empty(t, notifier.calls)
}

func TestRunCycle_EmptyCatalogIsNoOp(t *testing.T) {
	s := NewScheduler(&fakeCatalog{}, NewChecker(&fakeClient{}, 7, zap.NewNop()), &fakeNotifier{}, time.Minute, zap.NewNop())
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Doctors)
}

func TestRunCycle_ContinuesPastFailingDoctor(t *testing.T) {
	// Doctor 1 has placeholder ids (no pollable units); doctor 2 is healthy.
	broken := testDoctor(1)
	broken.Centers[0].CenterID = domain.PlaceholderPrefix + "dead"
	healthy := testDoctor(2)

	now := time.Now().UTC()
	d1 := now.Add(24 * time.Hour).Truncate(time.Second)
	client := &fakeClient{
		days: map[string][]int64{"c-1": {d1.Unix()}},
		slots: map[int64][]domain.AppointmentSlot{
			d1.Unix(): {{From: d1, To: d1.Add(15 * time.Minute), Turn: 1}},
		},
	}
	catalog := &fakeCatalog{doctors: []domain.Doctor{broken, healthy}}
	notifier := &fakeNotifier{}

	s := NewScheduler(catalog, NewChecker(client, 7, zap.NewNop()), notifier, time.Minute, zap.NewNop())
	report, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Doctors[1].SlotCount())
	assert.Empty(t, report.Doctors[1].Units, "placeholder units are skipped, not attempted")
	assert.Equal(t, 1, report.Doctors[2].SlotCount())
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, int64(2), notifier.calls[0].doctorID)
}

func TestRunCycle_CancellationBetweenUnits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog := &fakeCatalog{doctors: []domain.Doctor{testDoctor(1)}}
	notifier := &fakeNotifier{}
	client := &fakeClient{}

	s := NewScheduler(catalog, NewChecker(client, 7, zap.NewNop()), notifier, time.Minute, zap.NewNop())
	_, err := s.RunCycle(ctx)
	require.NoError(t, err)

	assert.Empty(t, client.terminals, "no protocol calls after cancellation")
	assert.Empty(t, notifier.calls)
}

func TestCheckDoctor_FreshTerminalPerCenterBurst(t *testing.T) {
	doctor := testDoctor(1)
	doctor.Centers = append(doctor.Centers, domain.Center{
		CenterID: "c-2", UserCenterID: "uc-2",
		Services: []domain.Service{{ServiceID: "s-2"}, {ServiceID: "s-3"}},
	})

	client := &fakeClient{}
	checker := NewChecker(client, 7, zap.NewNop())
	checker.CheckDoctor(context.Background(), doctor)

	require.Len(t, client.terminals["c-2"], 2)
	assert.Equal(t, client.terminals["c-2"][0], client.terminals["c-2"][1],
		"one terminal id per center burst")
	require.Len(t, client.terminals["c-1"], 1)
	assert.NotEqual(t, client.terminals["c-1"][0], client.terminals["c-2"][0],
		"different centers get different terminal ids")
}
