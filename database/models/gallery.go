package models

import "gorm.io/gorm"

type Gallery struct {
	gorm.Model
	PublicID     string `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	OwnerID      uint   `gorm:"index;not null" json:"owner_id"`
	Owner        User   `gorm:"foreignKey:OwnerID" json:"-"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"size:500" json:"description"`
	IsPublic     bool   `gorm:"default:false;not null" json:"is_public"`
	IsPublished  bool   `gorm:"default:false;not null" json:"is_published"`
	CoverImageID *uint  `json:"cover_image_id,omitempty"`
	CoverText    string `gorm:"size:255" json:"cover_text"`

	Images []*Image `gorm:"many2many:image_galleries;" json:"-"`
}

// IsPubliclyVisible 公开且已发布
func (g *Gallery) IsPubliclyVisible() bool {
	return g.IsPublic && g.IsPublished
}
