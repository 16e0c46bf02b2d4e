package models

import "time"

type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	AuthorityLevel Role      `json:"authorityLevel"` // ADMIN | DEVELOPER | USER
	CreatedAt      time.Time `json:"createdAt"`
}

func (u User) FullName() string { return u.FirstName + " " + u.LastName }

func (u User) IsAdmin() bool { return u.AuthorityLevel == RoleAdmin }
