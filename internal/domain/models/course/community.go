package course

import "time"

// Community is the tenant that owns courses. Membership, billing and branding
// live elsewhere; courses only reference it by id.
type Community struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
