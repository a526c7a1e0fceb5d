package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default cost for bcrypt password hashing
const bcryptCost = 10

type User struct {
	gorm.Model
	Name               string `json:"name"`
	Username           string `json:"username" gorm:"uniqueIndex"`
	Email              string `json:"email" gorm:"uniqueIndex"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	Password           string `json:"-"`
	SessionToken       string `json:"-"`
	TokenVersion       int    `json:"-"`
	PasswordResetToken string `json:"-"`
	IsAdmin            bool   `json:"isAdmin"`
	IsActive           bool   `json:"isActive"`
}

// UserProfile is the projection returned by the auth endpoints.
type UserProfile struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BeforeSave normalizes the email to lower case and hashes the password
// whenever the stored value is not already a bcrypt hash, so the password
// is only re-hashed when it actually changes.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if u.Password == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(u.Password)); err == nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether the plain-text password matches the stored
// hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email}
}
