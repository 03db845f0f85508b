package model

import "time"

type Slide struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageURL     string    `gorm:"type:varchar(500);not null" json:"image_url"`
	Title        string    `gorm:"type:varchar(200)" json:"title"`
	Subtitle     string    `gorm:"type:varchar(300)" json:"subtitle"`
	DisplayOrder int       `gorm:"not null;index" json:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Slide) TableName() string {
	return "slideshow"
}
