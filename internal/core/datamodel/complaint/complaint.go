package complaint

import "time"

type Complaint struct {
	ID                  int64      `gorm:"primaryKey"`
	UserID              int64      `gorm:"column:user_id;not null;index"`
	Title               string     `gorm:"column:title;not null"`
	Description         string     `gorm:"column:description;not null"`
	ImagePath           string     `gorm:"column:image_path;not null"`
	VoiceNotePath       *string    `gorm:"column:voice_note_path"`
	Location            string     `gorm:"column:location;not null"`
	Department          string     `gorm:"column:department;not null;index"`
	Status              string     `gorm:"column:status;default:pending;index"`
	Priority            string     `gorm:"column:priority;default:medium"`
	AdminNotes          string     `gorm:"column:admin_notes"`
	ResolutionImagePath *string    `gorm:"column:resolution_image_path"`
	ResolutionNotes     string     `gorm:"column:resolution_notes"`
	Rating              *int       `gorm:"column:rating"`
	Feedback            string     `gorm:"column:feedback"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	ResolvedAt          *time.Time `gorm:"column:resolved_at"`
}

func (Complaint) TableName() string {
	return "complaints"
}
