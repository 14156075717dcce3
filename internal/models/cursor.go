package models

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RouteCursor is the keyset-pagination position for the upcoming listing.
// The listing orders by (date_time, id) ascending; the cursor names the
// last row of the previous page.
type RouteCursor struct {
	DateTime time.Time
	ID       uuid.UUID
}

// Encode serializes the cursor into an opaque token
func (c RouteCursor) Encode() string {
	raw := c.DateTime.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeRouteCursor parses a token produced by Encode
func DecodeRouteCursor(token string) (*RouteCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, NewValidationError("invalid pagination cursor")
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, NewValidationError("invalid pagination cursor")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid cursor timestamp: %s", parts[0]))
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, NewValidationError("invalid cursor id")
	}
	return &RouteCursor{DateTime: ts, ID: id}, nil
}

// RoutePage is one page of the upcoming listing
type RoutePage struct {
	Routes     []RouteWithCount `json:"routes"`
	NextCursor *string          `json:"next_cursor"`
}
