package models

import "gorm.io/gorm"

// BookCondition is the grade derived from the model's overall ratio.
type BookCondition string

const (
	ConditionLikeNew   BookCondition = "LIKE_NEW"
	ConditionGood      BookCondition = "GOOD"
	ConditionQuiteGood BookCondition = "QUITE_GOOD"
	ConditionFair      BookCondition = "FAIR"
	ConditionPoor      BookCondition = "POOR"
)

// Book describes the physical item being sold.
type Book struct {
	ID               string            `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string            `gorm:"not null;index" json:"title"`
	Author           string            `json:"author"`
	ISBN             string            `gorm:"column:isbn" json:"ISBN"`
	Publisher        string            `json:"publisher"`
	PublishYear      int               `json:"publishYear"`
	Language         string            `json:"language"`
	BuyPrice         float64           `json:"buyPrice"`
	ImageURL         string            `json:"imageUrl"`
	PredictionResult *PredictionResult `gorm:"foreignKey:BookID" json:"predictionResult,omitempty"`
}

func (b *Book) BeforeCreate(*gorm.DB) error {
	b.ID = newID(b.ID)
	return nil
}

// PredictionResult is the stored grading of a book image.
type PredictionResult struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	BookID        string        `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	BookCondition BookCondition `gorm:"type:varchar(16);not null" json:"bookCondition"`
	BuyPrice      float64       `json:"buyPrice"`
	OutputPrice   float64       `json:"outputPrice"`
	Percentage    int           `json:"percentage"`
	WornOutRatio  float64       `json:"wornOutRatio"`
	RippedRatio   float64       `json:"rippedRatio"`
	OverallRatio  float64       `json:"overallRatio"`
}

func (p *PredictionResult) BeforeCreate(*gorm.DB) error {
	p.ID = newID(p.ID)
	return nil
}
