package domain

import "time"

type ID string

type User struct {
	ID           ID
	Username     string
	MCUUID       string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	CreatedAt    time.Time
}
