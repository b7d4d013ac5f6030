package models

import "time"

// Category is one of the fixed catalog categories.
type Category string

const (
	CategoryElectronics Category = "Elektronik"
	CategoryClothing    Category = "Giyim"
	CategoryHome        Category = "Ev & Yaşam"
	CategoryBooks       Category = "Kitap & Hobi"
	CategorySports      Category = "Spor & Outdoor"
	CategoryToys        Category = "Oyuncak"
	CategoryCosmetics   Category = "Kozmetik"
	CategoryOther       Category = "Diğer"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryHome,
	CategoryBooks,
	CategorySports,
	CategoryToys,
	CategoryCosmetics,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const DefaultProductImage = "default-product.png"

// Product is a catalog listing owned by a seller. SellerName is copied from
// the seller at creation time and is not kept in sync afterwards.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	Name        string    `gorm:"size:100;not null" bson:"name" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:text;not null" bson:"description" json:"description" validate:"required,max=2000"`
	Price       float64   `gorm:"not null" bson:"price" json:"price" validate:"gte=0"`
	Category    Category  `gorm:"size:32;not null;index" bson:"category" json:"category" validate:"category"`
	Stock       int       `gorm:"not null;default:0" bson:"stock" json:"stock" validate:"gte=0"`
	Image       string    `gorm:"not null" bson:"image" json:"image"`
	IsActive    bool      `gorm:"not null" bson:"is_active" json:"isActive"`
	SellerID    string    `gorm:"column:seller_id;type:uuid;not null;index" bson:"seller" json:"seller" validate:"required"`
	SellerName  string    `gorm:"not null" bson:"seller_name" json:"sellerName" validate:"required"`
	CreatedAt   time.Time `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
