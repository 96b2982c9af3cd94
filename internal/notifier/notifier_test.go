package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-reservation-backend/internal/model"
)

// mockStore is a func-field mock of the Store interface.
type mockStore struct {
	created    []*model.Notification
	createFunc func(n *model.Notification) error
	admins     []model.User
	adminsErr  error
	users      map[string]*model.User
	resources  map[string]*model.Resource
}

func (m *mockStore) CreateNotification(_ context.Context, n *model.Notification) error {
	if m.createFunc != nil {
		if err := m.createFunc(n); err != nil {
			return err
		}
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockStore) ListAdmins(context.Context) ([]model.User, error) {
	return m.admins, m.adminsErr
}

func (m *mockStore) GetUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockStore) GetResource(_ context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, errors.New("resource not found")
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:         "b-1",
		UserID:     "u-1",
		ResourceID: "r-1",
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-10",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Status:     model.BookingPending,
	}
}

func testStore() *mockStore {
	return &mockStore{
		admins: []model.User{
			{ID: "a-1", Role: model.RoleAdmin},
			{ID: "a-2", Role: model.RoleAdmin},
		},
		users: map[string]*model.User{
			"u-1": {ID: "u-1", Name: "Asha"},
		},
		resources: map[string]*model.Resource{
			"r-1": {ID: "r-1", Name: "GPU Node 1", Specification: "RTX 4090, 64GB"},
		},
	}
}

func TestBookingCreated(t *testing.T) {
	st := testStore()
	svc := New(st)

	svc.BookingCreated(context.Background(), testBooking())

	require.Len(t, st.created, 2)
	recipients := []string{st.created[0].UserID, st.created[1].UserID}
	assert.ElementsMatch(t, []string{"a-1", "a-2"}, recipients)
	for _, n := range st.created {
		assert.Equal(t, model.NotifyInfo, n.Type)
		assert.Equal(t, "New booking request", n.Title)
		assert.Contains(t, n.Message, "Asha")
		assert.Contains(t, n.Message, "GPU Node 1")

		var data model.NotificationData
		require.NoError(t, json.Unmarshal(n.Data, &data))
		assert.Equal(t, "b-1", data.BookingID)
		assert.Equal(t, "r-1", data.ResourceID)
		assert.Equal(t, "GPU Node 1", data.ResourceName)
	}
}

func TestBookingRejected(t *testing.T) {
	st := testStore()
	svc := New(st)

	b := testBooking()
	b.Status = model.BookingRejected
	b.RejectionReason = "maintenance window"
	svc.BookingRejected(context.Background(), b, "a-1")

	require.Len(t, st.created, 1)
	n := st.created[0]
	assert.Equal(t, "u-1", n.UserID)
	assert.Equal(t, model.NotifyError, n.Type)
	assert.Contains(t, n.Message, "maintenance window")

	var data model.NotificationData
	require.NoError(t, json.Unmarshal(n.Data, &data))
	assert.Equal(t, "a-1", data.ActorID)
	assert.Equal(t, "maintenance window", data.Reason)
}

func TestBookingExpired(t *testing.T) {
	st := testStore()
	svc := New(st)

	b := testBooking()
	b.Status = model.BookingCompleted
	svc.BookingExpired(context.Background(), b)

	require.Len(t, st.created, 3)
	assert.Equal(t, "u-1", st.created[0].UserID)
	assert.Equal(t, model.NotifyInfo, st.created[0].Type)
	for _, n := range st.created[1:] {
		assert.Equal(t, model.NotifySuccess, n.Type)
		assert.Equal(t, "Booking completed", n.Title)
	}
}

func TestRecordingIsolation(t *testing.T) {
	t.Run("one failed recipient does not block the rest", func(t *testing.T) {
		st := testStore()
		st.createFunc = func(n *model.Notification) error {
			if n.UserID == "a-1" {
				return errors.New("write failed")
			}
			return nil
		}
		svc := New(st)

		svc.BookingCreated(context.Background(), testBooking())

		require.Len(t, st.created, 1)
		assert.Equal(t, "a-2", st.created[0].UserID)
	})

	t.Run("falls back to ids when lookups fail", func(t *testing.T) {
		st := testStore()
		st.users = nil
		st.resources = nil
		svc := New(st)

		svc.BookingApproved(context.Background(), testBooking(), "a-1")

		require.Len(t, st.created, 1)
		assert.Contains(t, st.created[0].Message, "r-1")
	})
}
