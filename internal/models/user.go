package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

const DefaultAvatar = "default-avatar.png"

// ParseRole returns the role named by s, or RoleBuyer when s is not a member
// of the closed set.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r
	}
	return RoleBuyer
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleAdmin
}

// Address is a postal address attached to a user.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}

// User represents a marketplace account.
type User struct {
	ID           string                       `gorm:"type:uuid;primaryKey" bson:"_id" json:"id"`
	Name         string                       `gorm:"size:50;not null" bson:"name" json:"name" validate:"required,max=50"`
	Email        string                       `gorm:"uniqueIndex;not null" bson:"email" json:"email" validate:"required,email"`
	PasswordHash string                       `gorm:"not null" bson:"password_hash,omitempty" json:"-"`
	Role         Role                         `gorm:"size:16;not null;default:buyer" bson:"role" json:"role"`
	Avatar       string                       `gorm:"not null;default:default-avatar.png" bson:"avatar" json:"avatar"`
	Addresses    datatypes.JSONSlice[Address] `gorm:"type:jsonb;not null;default:'[]'" bson:"addresses" json:"addresses"`
	CreatedAt    time.Time                    `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time                    `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the read view of a user returned by register and login.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar"`
}

// Profile is the read view returned for the current session. It adds the
// user's addresses to PublicUser.
type Profile struct {
	PublicUser
	Addresses []Address `json:"addresses"`
}

// Public returns the user without credential material.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar}
}

// Profile returns the public view plus addresses.
func (u *User) Profile() Profile {
	addrs := []Address(u.Addresses)
	if addrs == nil {
		addrs = []Address{}
	}
	return Profile{PublicUser: u.Public(), Addresses: addrs}
}
