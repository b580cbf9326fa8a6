package models

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

// NullStringArray is a custom type for handling TEXT[] arrays in PostgreSQL
// whose elements may be NULL
type NullStringArray []sql.NullString

// Scan implements the sql.Scanner interface
func (a *NullStringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	slice := (*[]sql.NullString)(a)
	return pq.Array(slice).Scan(src)
}

// MarshalJSON renders NULL elements as JSON null
func (a NullStringArray) MarshalJSON() ([]byte, error) {
	out := make([]*string, len(a))
	for i := range a {
		if a[i].Valid {
			s := a[i].String
			out[i] = &s
		}
	}
	return json.Marshal(out)
}

// Count returns the number of non-NULL elements
func (a NullStringArray) Count() int {
	n := 0
	for _, v := range a {
		if v.Valid {
			n++
		}
	}
	return n
}
