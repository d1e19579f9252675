package models

// Post is a single blog entry. Title and Slug are unique across all posts.
type Post struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"type:varchar(250);not null;uniqueIndex:idx_posts_title"`
	Subtitle   string    `json:"subtitle" gorm:"type:varchar(250);not null"`
	Date       string    `json:"date" gorm:"type:varchar(250);not null"`
	Body       string    `json:"body" gorm:"type:text;not null"`
	Author     string    `json:"author" gorm:"type:varchar(250);not null"`
	Slug       string    `json:"slug" gorm:"type:varchar(250);not null;uniqueIndex:idx_posts_slug"`
	CategoryID *uint     `json:"categoryId,omitempty" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Post) TableName() string { return "posts" }

// CategoryName returns the name of the post's category, or "" when it has none.
func (p Post) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
