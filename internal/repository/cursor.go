// Package repository provides data access layer implementations for the application.
package repository

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"bloggazers/internal/models"
)

// Cursor is an opaque keyset-pagination token: the creation time and id of
// the last item the client has seen. Listing continues strictly after it in
// (created_at, id) descending order.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uint      `json:"i"`
}

// Encode serializes the cursor into the opaque token handed to clients.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a client-supplied token. An empty token yields a nil
// cursor (start from the newest item).
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, models.NewValidationError("Invalid cursor")
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, models.NewValidationError("Invalid cursor")
	}
	return &c, nil
}

// CursorFor returns the continuation cursor after the given page, or nil if
// the page was short (no more results).
func CursorFor(posts []*models.Post, limit int) *Cursor {
	if len(posts) == 0 || len(posts) < limit {
		return nil
	}
	last := posts[len(posts)-1]
	return &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
}
