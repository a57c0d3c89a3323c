package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time assertions that RawPayload implements both sql.Scanner and
// driver.Valuer, catching method signature drift at compile time.
var (
	_ sql.Scanner   = (*RawPayload)(nil)
	_ driver.Valuer = RawPayload(nil)
)

// RawPayload is the opaque structured body of a webhook delivery, stored
// verbatim in a JSONB column. The audit log keeps the full payload so that
// unhandled event shapes can be inspected and replayed later.
type RawPayload map[string]any

// Scan implements sql.Scanner for reading JSONB from the database.
func (p *RawPayload) Scan(value any) error {
	if value == nil {
		*p = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, p)
}

// Value implements driver.Valuer for writing JSONB to the database.
func (p RawPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}
