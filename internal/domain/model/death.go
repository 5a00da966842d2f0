package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Document field names of a persisted death record.
const (
	FieldID          = "id"
	FieldOwnerID     = "ownerId"
	FieldDisplayName = "displayName"
	FieldAvatarRef   = "avatarRef"
	FieldScore       = "score"
	FieldPosition    = "position"
	FieldCreatedAt   = "createdAt"
)

// Identity is the current player as supplied by the auth collaborator.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef"`
}

// Position is an absolute world coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DeathRecord is one persisted, immutable round-ending death.
type DeathRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef"`
	Score       int       `json:"score"`
	Position    Position  `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToDocument flattens the record into the generic document shape the store persists.
func (r DeathRecord) ToDocument() map[string]any {
	return map[string]any{
		FieldID:          r.ID,
		FieldOwnerID:     r.OwnerID,
		FieldDisplayName: r.DisplayName,
		FieldAvatarRef:   r.AvatarRef,
		FieldScore:       r.Score,
		FieldPosition:    map[string]any{"x": r.Position.X, "y": r.Position.Y},
		FieldCreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// DeathRecordFromDocument parses a stored document. Numbers may arrive as any
// numeric kind (in memory) or float64 (JSON); timestamps as time.Time or RFC 3339.
func DeathRecordFromDocument(doc map[string]any) (DeathRecord, error) {
	var r DeathRecord
	id, ok := doc[FieldID].(string)
	if !ok || id == "" {
		return r, fmt.Errorf("death record: missing %s", FieldID)
	}
	r.ID = id
	r.OwnerID, _ = doc[FieldOwnerID].(string)
	r.DisplayName, _ = doc[FieldDisplayName].(string)
	r.AvatarRef, _ = doc[FieldAvatarRef].(string)

	score, ok := Number(doc[FieldScore])
	if !ok {
		return r, fmt.Errorf("death record %s: invalid %s", id, FieldScore)
	}
	r.Score = int(math.Round(score))

	pos, ok := doc[FieldPosition].(map[string]any)
	if !ok {
		return r, fmt.Errorf("death record %s: invalid %s", id, FieldPosition)
	}
	if r.Position.X, ok = Number(pos["x"]); !ok {
		return r, fmt.Errorf("death record %s: invalid position.x", id)
	}
	if r.Position.Y, ok = Number(pos["y"]); !ok {
		return r, fmt.Errorf("death record %s: invalid position.y", id)
	}

	switch v := doc[FieldCreatedAt].(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return r, fmt.Errorf("death record %s: %w", id, err)
		}
		r.CreatedAt = t
	case nil:
	default:
		return r, fmt.Errorf("death record %s: invalid %s", id, FieldCreatedAt)
	}
	return r, nil
}

// Number widens any Go numeric (or numeric string) to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
