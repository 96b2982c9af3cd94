package model

import "time"

// ResourceStatus is the cached availability projection of a resource.
type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceBooked      ResourceStatus = "booked"
	ResourceMaintenance ResourceStatus = "maintenance"
)

// Resource represents a bookable lab computer.
//
// Status is derived state: "booked" holds exactly while at least one
// approved booking on the resource has not yet elapsed. "maintenance" is
// set manually and is never overwritten by booking transitions.
type Resource struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Name          string         `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Location      string         `gorm:"size:128" json:"location"`
	Specification string         `gorm:"type:text" json:"specification"`
	Status        ResourceStatus `gorm:"size:16;not null;default:available" json:"status"`
	CreatedAt     time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updatedAt"`
}
