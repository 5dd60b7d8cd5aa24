package models

import (
	"time"
)

// Review is unique per (author, title).
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_review_author_title" json:"title"`
	Title    *Title    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID uint      `gorm:"not null;index;uniqueIndex:idx_review_author_title" json:"-"`
	Author   *User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Score    int       `gorm:"not null;check:score >= 1 AND score <= 10" json:"score"`
	PubDate  time.Time `gorm:"not null;index;autoCreateTime" json:"pub_date"`
}
