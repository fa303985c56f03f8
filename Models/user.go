package Models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name       string `json:"name"`
	Email      string `json:"email" gorm:"uniqueIndex"`
	Password   []byte `json:"-"`
	Branch     string `json:"branch"`
	Permission int    `json:"permission"`
	IsApproved int    `json:"is_approved"`
}

// SetPassword stores the bcrypt hash, never the plain text.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

func (u *User) ComparePassword(plain string) error {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(plain))
}
