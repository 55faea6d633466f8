package charsetdemo

import "encoding/json"

// Schema is the ordered list of fields a page shows. Records are read
// through it, so columns never depend on which keys a payload happens to
// carry first.
type Schema []string

// DefaultSchema matches the sample payload: one "name" column.
var DefaultSchema = Schema{"name"}

func schemaOrDefault(sc Schema) Schema {
	if len(sc) == 0 {
		return DefaultSchema
	}
	return sc
}

// Record holds one user's already-decoded field values in schema order.
type Record []string

// Get returns the value of field name, or "" if the schema lacks it.
func (rc Record) Get(sc Schema, name string) string {
	for i, f := range sc {
		if f == name && i < len(rc) {
			return rc[i]
		}
	}
	return ""
}

// DecodeRecords parses a JSON array of flat string objects. Fields missing
// from an object come out empty; keys outside the schema are dropped. A
// null body is an empty sequence.
func DecodeRecords(text []byte, sc Schema) ([]Record, error) {
	var raw []map[string]string
	if err := json.Unmarshal(text, &raw); err != nil {
		return nil, &DecodeError{Op: "json", Offset: jsonOffset(err), Err: err}
	}
	recs := make([]Record, 0, len(raw))
	for _, m := range raw {
		rc := make(Record, len(sc))
		for i, f := range sc {
			rc[i] = m[f]
		}
		recs = append(recs, rc)
	}
	return recs, nil
}

func jsonOffset(err error) int {
	switch e := err.(type) {
	case *json.SyntaxError:
		return int(e.Offset)
	case *json.UnmarshalTypeError:
		return int(e.Offset)
	}
	return -1
}
