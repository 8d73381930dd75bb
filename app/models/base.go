package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind identifies which concrete table owns an entity row.
type EntityKind string

const (
	EntityKindListing      EntityKind = "listing"
	EntityKindUser         EntityKind = "user"
	EntityKindConversation EntityKind = "conversation"
	EntityKindMessage      EntityKind = "message"
	EntityKindTicket       EntityKind = "ticket"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindListing, EntityKindUser, EntityKindConversation, EntityKindMessage, EntityKindTicket:
		return true
	}
	return false
}

// Entity is the shared surrogate key every domain object hangs off.
// Favorites, media, reports and promotions reference entities instead of
// concrete tables, so one row exists here per listing, ticket and so on.
type Entity struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Kind      EntityKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func NewEntity(kind EntityKind) *Entity {
	return &Entity{Kind: kind}
}

// JSONMap is a JSON column backed by map[string]interface{}. Numbers come
// back as float64 after a round trip, same as encoding/json.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonmap: cannot scan %T", src)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// GetInt reads a numeric key as int. JSON numbers decode as float64, so
// that is the representation it accepts.
func (m JSONMap) GetInt(key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
