package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a Postgres uuid[] column, used for the frozen order
// membership a pool captures at lock time.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.scanLiteral(v)
	case []byte:
		return a.scanLiteral(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

// Value renders the Postgres array literal form, {uuid,uuid}.
func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, id := range a {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (a *UUIDArray) scanLiteral(literal string) error {
	literal = strings.TrimSpace(literal)
	literal = strings.TrimPrefix(literal, "{")
	literal = strings.TrimSuffix(literal, "}")
	if strings.TrimSpace(literal) == "" {
		*a = UUIDArray{}
		return nil
	}

	elems := strings.Split(literal, ",")
	out := make([]uuid.UUID, 0, len(elems))
	for _, elem := range elems {
		elem = strings.TrimSpace(strings.Trim(elem, `"`))
		id, err := uuid.Parse(elem)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", elem, err)
		}
		out = append(out, id)
	}
	*a = UUIDArray(out)
	return nil
}
