package domain

import (
	"time"

	"github.com/uptrace/bun"
)

type Instructor struct {
	bun.BaseModel `bun:"table:instructors"`

	ID        string    `bun:"id,pk"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func (i Instructor) DisplayName() string {
	return i.FirstName + " " + i.LastName
}
