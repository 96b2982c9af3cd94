package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lab-reservation-backend/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations. Time-filtered
// queries take a pre-truncated cutoff instant so the elapsed-ness rule
// lives with the callers, not here.
type Store interface {
	// Transaction runs fn against a transaction-scoped store.
	Transaction(ctx context.Context, fn func(Store) error) error

	UpsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListAdmins(ctx context.Context) ([]model.User, error)

	CreateResource(ctx context.Context, res *model.Resource) error
	UpdateResourceInfo(ctx context.Context, res *model.Resource) error
	DeleteResource(ctx context.Context, id string) error
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	ListResourceAvailability(ctx context.Context, cutoff time.Time) ([]ResourceAvailability, error)
	SetResourceStatus(ctx context.Context, id string, status model.ResourceStatus) error

	CreateBooking(ctx context.Context, booking *model.Booking) error
	SaveBooking(ctx context.Context, booking *model.Booking) error
	GetBookingForUpdate(ctx context.Context, id string) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListDueBookings(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
	CountBookingsForResource(ctx context.Context, resourceID string) (int64, error)
	CountActiveBookings(ctx context.Context, resourceID, excludeID string, cutoff time.Time) (int64, error)
	CountOverlappingBookings(ctx context.Context, resourceID, excludeID string, startsAt, endsAt time.Time) (int64, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error)
	DeleteNotification(ctx context.Context, id, userID string) error
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users ---

func (s *gormStore) UpsertUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role", "updated_at"}),
	}).Create(user).Error; err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *gormStore) ListAdmins(ctx context.Context) ([]model.User, error) {
	var admins []model.User
	if err := s.db.WithContext(ctx).Where("role = ?", model.RoleAdmin).Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// --- Resources ---

func (s *gormStore) CreateResource(ctx context.Context, res *model.Resource) error {
	return s.db.WithContext(ctx).Create(res).Error
}

// UpdateResourceInfo writes the descriptive columns of a resource. The
// status column is deliberately left out of the update: it belongs to the
// booking engine (SetResourceStatus), and writing it from a read snapshot
// would revert whatever the engine did in between.
func (s *gormStore) UpdateResourceInfo(ctx context.Context, res *model.Resource) error {
	result := s.db.WithContext(ctx).Model(&model.Resource{}).Where("id = ?", res.ID).
		Updates(map[string]interface{}{
			"name":          res.Name,
			"location":      res.Location,
			"specification": res.Specification,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update resource %s: %w", res.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteResource(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&model.Resource{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	if err := s.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

func (s *gormStore) ListResources(ctx context.Context) ([]model.Resource, error) {
	var resources []model.Resource
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// ListResourceAvailability returns every resource together with its
// approved booking covering the cutoff instant and the next one starting
// after it.
func (s *gormStore) ListResourceAvailability(ctx context.Context, cutoff time.Time) ([]ResourceAvailability, error) {
	resources, err := s.ListResources(ctx)
	if err != nil {
		return nil, err
	}

	var active []model.Booking
	if err := s.db.WithContext(ctx).
		Where("status = ? AND ends_at >= ?", model.BookingApproved, cutoff).
		Order("starts_at ASC").
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to list active bookings: %w", err)
	}

	byResource := make(map[string][]model.Booking, len(resources))
	for _, b := range active {
		byResource[b.ResourceID] = append(byResource[b.ResourceID], b)
	}

	out := make([]ResourceAvailability, 0, len(resources))
	for _, res := range resources {
		entry := ResourceAvailability{Resource: res}
		list := byResource[res.ID]
		for i := range list {
			if !list[i].StartsAt.After(cutoff) {
				if entry.Current == nil {
					entry.Current = &list[i]
				}
			} else if entry.Next == nil {
				entry.Next = &list[i]
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *gormStore) SetResourceStatus(ctx context.Context, id string, status model.ResourceStatus) error {
	result := s.db.WithContext(ctx).Model(&model.Resource{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to set resource %s status: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Bookings ---

func (s *gormStore) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return s.db.WithContext(ctx).Create(booking).Error
}

func (s *gormStore) SaveBooking(ctx context.Context, booking *model.Booking) error {
	return s.db.WithContext(ctx).Save(booking).Error
}

// GetBookingForUpdate loads a booking with a row-level lock when running
// inside a transaction. Locking clauses only exist on PostgreSQL; SQLite
// serializes writers on its own.
func (s *gormStore) GetBookingForUpdate(ctx context.Context, id string) (*model.Booking, error) {
	q := s.db.WithContext(ctx)
	if s.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var booking model.Booking
	if err := q.First(&booking, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (s *gormStore) ListBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Preload("Resource").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}

func (s *gormStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Resource").
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) ListDueBookings(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).
		Where("status = ? AND ends_at < ?", model.BookingApproved, cutoff).
		Order("ends_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list due bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) CountBookingsForResource(ctx context.Context, resourceID string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("resource_id = ?", resourceID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings for resource %s: %w", resourceID, err)
	}
	return count, nil
}

// CountActiveBookings counts approved bookings on a resource that have not
// elapsed at the cutoff instant, optionally excluding one booking id.
func (s *gormStore) CountActiveBookings(ctx context.Context, resourceID, excludeID string, cutoff time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("resource_id = ? AND status = ? AND ends_at >= ?", resourceID, model.BookingApproved, cutoff)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active bookings for resource %s: %w", resourceID, err)
	}
	return count, nil
}

// CountOverlappingBookings counts approved bookings on a resource whose
// interval intersects the given one. Touching endpoints do not count as
// overlap.
func (s *gormStore) CountOverlappingBookings(ctx context.Context, resourceID, excludeID string, startsAt, endsAt time.Time) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Booking{}).
		Where("resource_id = ? AND status = ? AND starts_at < ? AND ends_at > ?",
			resourceID, model.BookingApproved, endsAt, startsAt)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings for resource %s: %w", resourceID, err)
	}
	return count, nil
}

// --- Notifications ---

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *gormStore) ListNotificationsByUser(ctx context.Context, userID string) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	return notifications, nil
}

func (s *gormStore) DeleteNotification(ctx context.Context, id, userID string) error {
	result := s.db.WithContext(ctx).Delete(&model.Notification{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&model.Notification{}, "created_at < ?", cutoff)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete notifications before %s: %w", cutoff, result.Error)
	}
	return result.RowsAffected, nil
}
