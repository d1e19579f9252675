package models

// Category groups posts. Categories are created on first use by a post.
type Category struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"type:varchar(250);not null;uniqueIndex:idx_categories_name"`
	Posts []Post `json:"posts,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string { return "categories" }
