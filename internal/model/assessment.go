package model

import "time"

type DeliveryMode string

const (
	DeliverySupervised DeliveryMode = "supervised"
	DeliveryHomework   DeliveryMode = "homework"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	ClassSubjectID  uint         `gorm:"index;type:bigint unsigned" json:"classSubjectId"`
	Title           string       `gorm:"size:255;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	Coefficient     float64      `gorm:"default:1" json:"coefficient"` // weight within the subject average
	DeliveryMode    DeliveryMode `gorm:"size:20;default:'homework'" json:"deliveryMode"`
	DurationMinutes int          `gorm:"default:0" json:"durationMinutes"` // 0 = no time limit
	IsPublished     bool         `gorm:"default:false" json:"isPublished"`
	PublishedAt     *time.Time   `json:"publishedAt,omitempty"`
	CreatorID       uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
	ClassSubject    *ClassSubject `gorm:"foreignKey:ClassSubjectID" json:"classSubject,omitempty"`
	Questions       []Question    `gorm:"foreignKey:AssessmentID" json:"questions,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// TotalPoints sums the points of the loaded questions. Always computed,
// never stored. Requires Questions to be preloaded.
func (a *Assessment) TotalPoints() float64 {
	var total float64
	for _, q := range a.Questions {
		total += q.Points
	}
	return total
}
