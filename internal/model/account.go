package model

import "time"

// Account is an insight-company login. Password hashes are bcrypt and never
// leave the store layer.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CompanyName  string    `json:"companyName"`
	CreatedAt    time.Time `json:"createdAt"`
}
