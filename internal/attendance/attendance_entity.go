package attendance

import (
	"time"
)

// Attendance is one check-in event. Rows are insert-only: there is no
// update or delete path anywhere in the service.
type Attendance struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;type:varchar(255);not null"`
	PhotoPath      string    `gorm:"column:photo_path;type:varchar(255);not null"`
	Latitude       float64   `gorm:"column:latitude;type:numeric(11,8);not null"`
	Longitude      float64   `gorm:"column:longitude;type:numeric(11,8);not null"`
	GoogleMapsLink string    `gorm:"column:google_maps_link;type:varchar(255);not null"`
	Notes          *string   `gorm:"column:notes;type:text"`
	CheckedInAt    time.Time `gorm:"column:checked_in_at;type:timestamptz;not null;index"`
	IPAddress      *string   `gorm:"column:ip_address;type:varchar(45)"`
	UserAgent      *string   `gorm:"column:user_agent;type:text"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}
