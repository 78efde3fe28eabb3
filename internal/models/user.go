package models

import "time"

// User represents a user account in the system.
type User struct {
	Record
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Age       int    `json:"age" validate:"required,min=13"`
	Email     string `json:"email" validate:"required,email"`

	// Password is accepted on input only and replaced by PasswordHash before storage.
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"-"` // Never expose this to the client

	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
}
