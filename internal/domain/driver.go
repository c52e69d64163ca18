package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver is linked one-to-one with a user account identity.
type Driver struct {
	ID            uuid.UUID
	UserID        string
	FirstName     string
	LastName      string
	Email         string
	PhoneNumber   string
	LicenseNumber string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (d *Driver) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
