package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Main tables
// ============================================================

// User represents users table
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100" json:"firstName"`
	LastName  string    `gorm:"size:100" json:"lastName"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email" validate:"required,email"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Role represents roles table
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Role) TableName() string {
	return "roles"
}

// Product represents products table
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:191;not null" json:"name" validate:"required"`
	Price     float64   `gorm:"not null;check:price >= 0" json:"price" validate:"gte=0"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// Menu represents menus table. Its content is the set of attached products.
type Menu struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:191;not null" json:"name" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Menu) TableName() string {
	return "menus"
}

// Promotion represents promotions table. Value is a percentage discount.
type Promotion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:191;not null" json:"name" validate:"required"`
	Value     float64   `gorm:"not null;check:value >= 0" json:"value" validate:"gte=0"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// Order represents orders table. Price is always computed server-side.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Price     float64   `gorm:"not null;default:0" json:"price"`
	UserID    *uint     `gorm:"index" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// AccessToken represents access_tokens table. The id is the bearer credential.
type AccessToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TTL       int64     `gorm:"not null" json:"ttl"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// ExpiresAt returns the instant the token stops authorizing requests
func (t *AccessToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.TTL) * time.Second)
}

// IsExpired reports whether now is past the token lifetime
func (t *AccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}

// ============================================================
// Liaison tables
// ============================================================

// Join table names
const (
	TableProductMenus      = "product_menus"
	TableOrderProducts     = "order_products"
	TableOrderMenus        = "order_menus"
	TableRoleMappings      = "role_mappings"
	TablePromotionProducts = "promotion_products"
	TablePromotionMenus    = "promotion_menus"
)

// ProductMenu links products to menus
type ProductMenu struct {
	ProductID uint      `gorm:"primaryKey" json:"productId"`
	MenuID    uint      `gorm:"primaryKey" json:"menuId"`
	CreatedAt time.Time `json:"createdAt"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Menu      *Menu     `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProductMenu) TableName() string {
	return TableProductMenus
}

// OrderProduct links orders to directly selected products
type OrderProduct struct {
	OrderID   uint      `gorm:"primaryKey" json:"orderId"`
	ProductID uint      `gorm:"primaryKey" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
	Order     *Order    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (OrderProduct) TableName() string {
	return TableOrderProducts
}

// OrderMenu links orders to selected menus
type OrderMenu struct {
	OrderID   uint      `gorm:"primaryKey" json:"orderId"`
	MenuID    uint      `gorm:"primaryKey" json:"menuId"`
	CreatedAt time.Time `json:"createdAt"`
	Order     *Order    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Menu      *Menu     `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"-"`
}

func (OrderMenu) TableName() string {
	return TableOrderMenus
}

// RoleMapping links roles to users
type RoleMapping struct {
	RoleID    uint      `gorm:"primaryKey" json:"roleId"`
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Role      *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RoleMapping) TableName() string {
	return TableRoleMappings
}

// PromotionProduct links promotions to products
type PromotionProduct struct {
	PromotionID uint       `gorm:"primaryKey" json:"promotionId"`
	ProductID   uint       `gorm:"primaryKey" json:"productId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Promotion   *Promotion `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE" json:"-"`
	Product     *Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PromotionProduct) TableName() string {
	return TablePromotionProducts
}

// PromotionMenu links promotions to menus
type PromotionMenu struct {
	PromotionID uint       `gorm:"primaryKey" json:"promotionId"`
	MenuID      uint       `gorm:"primaryKey" json:"menuId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Promotion   *Promotion `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE" json:"-"`
	Menu        *Menu      `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PromotionMenu) TableName() string {
	return TablePromotionMenus
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Main tables
		&User{},
		&Role{},
		&Product{},
		&Menu{},
		&Promotion{},
		&Order{},
		&AccessToken{},
		// Liaison tables
		&ProductMenu{},
		&OrderProduct{},
		&OrderMenu{},
		&RoleMapping{},
		&PromotionProduct{},
		&PromotionMenu{},
	)
}
