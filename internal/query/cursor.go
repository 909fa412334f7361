package query

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"fintrack/internal/core"
)

// Cursor is a position in a sorted result: the sort key values of a record
// followed by its id. Values are int64 for numeric fields and string
// otherwise.
type Cursor struct {
	Sort   string `json:"s"`
	Values []any  `json:"v"`
	ID     string `json:"id"`
}

// Encode returns the opaque base64url token for the cursor.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a token issued under sort. Tokens that do not decode
// or that belong to another sort order yield core.ErrInvalidCursor.
func DecodeCursor(token string, sort Sort) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalidCursor("malformed token")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var c Cursor
	if err := dec.Decode(&c); err != nil {
		return nil, invalidCursor("malformed token")
	}
	if c.ID == "" {
		return nil, invalidCursor("missing id")
	}
	if c.Sort != sort.Signature() || len(c.Values) != len(sort) {
		return nil, invalidCursor("issued for a different sort order")
	}

	for i, key := range sort {
		v, err := normalizeValue(key.Field, c.Values[i])
		if err != nil {
			return nil, err
		}
		c.Values[i] = v
	}
	return &c, nil
}

func normalizeValue(field SortField, v any) (any, error) {
	if field.Numeric() {
		n, ok := v.(json.Number)
		if !ok {
			return nil, invalidCursor(fmt.Sprintf("value for %s is not a number", field))
		}
		i, err := n.Int64()
		if err != nil {
			return nil, invalidCursor(fmt.Sprintf("value for %s is not an integer", field))
		}
		return i, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, invalidCursor(fmt.Sprintf("value for %s is not a string", field))
	}
	return s, nil
}

func invalidCursor(reason string) error {
	return fmt.Errorf("%w: %s", core.ErrInvalidCursor, reason)
}
