package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base holds the columns every table carries.
type Base struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// ListOptions controls paging and soft-delete visibility for list queries.
type ListOptions struct {
	Limit          int
	Offset         int
	IncludeDeleted bool
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// limit returns a bounded page size.
func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return defaultListLimit
	case o.Limit > maxListLimit:
		return maxListLimit
	default:
		return o.Limit
	}
}

func (o ListOptions) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}

// jsonArg converts an opaque payload into a jsonb argument. Empty payloads are stored as NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
