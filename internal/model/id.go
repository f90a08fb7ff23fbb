package model

import "encoding/json"

// ID is an opaque backend identifier. The backend emits either a plain hex
// string or a Mongo extended-JSON wrapper {"$oid": "<hex>"}; both normalize
// to the bare string here, at the boundary.
type ID string

type extJSONOID struct {
	OID string `json:"$oid"`
}

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var wrapper extJSONOID
	if err := json.Unmarshal(b, &wrapper); err != nil {
		return err
	}
	*id = ID(wrapper.OID)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }
