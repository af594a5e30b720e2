package models

import (
	"time"
)

// Role names returned by login and the admin user listing
const (
	RoleAdmin     = "admin"
	RoleInspector = "inspector"
	RoleUnknown   = "unknown"
)

// User is an account. AuthUUID is the stable identity that notifications are addressed to.
// Column and JSON names follow the existing "User" table.
type User struct {
	UserID       uint      `gorm:"column:UserID;primaryKey;autoIncrement" json:"UserID"`
	UserName     string    `gorm:"column:UserName" json:"UserName"`
	Email        string    `gorm:"column:Email;uniqueIndex;not null" json:"Email"`
	AuthUUID     string    `gorm:"column:AuthUUID;uniqueIndex;type:varchar(36)" json:"AuthUUID"`
	PasswordHash string    `gorm:"column:PasswordHash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:CreatedAt" json:"CreatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "User"
}

// Admin is the admin profile of a user, keyed by UserID
type Admin struct {
	UserID   uint   `gorm:"column:UserID;primaryKey;autoIncrement:false" json:"UserID"`
	FullName string `gorm:"column:FullName" json:"FullName"`
	PhoneNo  string `gorm:"column:PhoneNo" json:"PhoneNo"`
	Address  string `gorm:"column:Address" json:"Address"`
	Photo    string `gorm:"column:Photo" json:"Photo"`
}

// TableName specifies the table name for Admin model
func (Admin) TableName() string {
	return "Admin"
}

// Inspector is the inspector profile of a user, keyed by UserID
type Inspector struct {
	UserID   uint   `gorm:"column:UserID;primaryKey;autoIncrement:false" json:"UserID"`
	FullName string `gorm:"column:FullName" json:"FullName"`
	PhoneNo  string `gorm:"column:PhoneNo" json:"PhoneNo"`
	Address  string `gorm:"column:Address" json:"Address"`
	Photo    string `gorm:"column:Photo" json:"Photo"`
}

// TableName specifies the table name for Inspector model
func (Inspector) TableName() string {
	return "Inspector"
}

// ProfilePatch carries the optional fields of an Admin or Inspector update
type ProfilePatch struct {
	FullName *string `json:"FullName"`
	PhoneNo  *string `json:"PhoneNo"`
	Address  *string `json:"Address"`
	Photo    *string `json:"Photo"`
}

// ApplyAdmin merges the set fields into an Admin profile
func (p ProfilePatch) ApplyAdmin(a *Admin) {
	setString(&a.FullName, p.FullName)
	setString(&a.PhoneNo, p.PhoneNo)
	setString(&a.Address, p.Address)
	setString(&a.Photo, p.Photo)
}

// ApplyInspector merges the set fields into an Inspector profile
func (p ProfilePatch) ApplyInspector(i *Inspector) {
	setString(&i.FullName, p.FullName)
	setString(&i.PhoneNo, p.PhoneNo)
	setString(&i.Address, p.Address)
	setString(&i.Photo, p.Photo)
}

// UserSummary is a row of the admin user listing
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
