package department

import "time"

// Department rows carry contact details plus denormalized complaint counters.
// The counters are a cache rebuilt from the complaints table, never written
// directly by request handlers.
type Department struct {
	ID                 int64     `gorm:"primaryKey"`
	Name               string    `gorm:"column:name;uniqueIndex;not null"`
	Email              string    `gorm:"column:email;not null"`
	Phone              string    `gorm:"column:phone"`
	Address            string    `gorm:"column:address"`
	AverageRating      float64   `gorm:"column:average_rating;default:0"`
	TotalComplaints    int64     `gorm:"column:total_complaints;default:0"`
	ResolvedComplaints int64     `gorm:"column:resolved_complaints;default:0"`
	PendingComplaints  int64     `gorm:"column:pending_complaints;default:0"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
