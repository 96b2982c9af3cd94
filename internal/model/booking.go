package model

import "time"

// ProjectMeta carries the requester's project context as submitted. The
// engine stores it verbatim and never interprets it.
type ProjectMeta struct {
	ProblemStatement      string `gorm:"type:text" json:"problemStatement"`
	DatasetDescription    string `gorm:"type:text" json:"datasetDescription"`
	BottleneckExplanation string `gorm:"type:text" json:"bottleneckExplanation"`
}

// Booking represents a reservation of one resource over a date/time
// interval. StartDate/EndDate use layout "2006-01-02" and
// StartTime/EndTime use "15:04" as submitted; StartsAt/EndsAt hold the
// combined instants in the configured location and drive every temporal
// comparison.
type Booking struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	UserID          string        `gorm:"index;size:64;not null" json:"userId"`
	ResourceID      string        `gorm:"index;size:36;not null" json:"resourceId"`
	StartDate       string        `gorm:"size:10;not null" json:"startDate"`
	EndDate         string        `gorm:"size:10;not null" json:"endDate"`
	StartTime       string        `gorm:"size:5;not null" json:"startTime"`
	EndTime         string        `gorm:"size:5;not null" json:"endTime"`
	StartsAt        time.Time     `gorm:"index;not null" json:"startsAt"`
	EndsAt          time.Time     `gorm:"index;not null" json:"endsAt"`
	Reason          string        `gorm:"type:text" json:"reason"`
	Status          BookingStatus `gorm:"index;size:16;not null;default:pending" json:"status"`
	RejectionReason string        `gorm:"type:text" json:"rejectionReason,omitempty"`
	Project         ProjectMeta   `gorm:"embedded;embeddedPrefix:project_" json:"project"`
	CreatedAt       time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updatedAt"`

	// Associations
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Resource Resource `gorm:"foreignKey:ResourceID" json:"resource,omitempty"`
}
