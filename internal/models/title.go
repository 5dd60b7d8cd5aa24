package models

type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null;index" json:"name"`
	Year        int       `gorm:"not null;index" json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  *uint     `gorm:"index" json:"-"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`

	// 非数据库字段，查询时由 store 填充
	Genres []Genre  `gorm:"-" json:"genre"`
	Rating *float64 `gorm:"-" json:"rating"`
}

// TitleGenre links titles and genres. Both sides cascade.
type TitleGenre struct {
	TitleID uint  `gorm:"primaryKey" json:"title_id"`
	Title   Title `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	GenreID uint  `gorm:"primaryKey;index" json:"genre_id"`
	Genre   Genre `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
