package audit

import (
	"encoding/json"
	"fmt"
)

// SerializeData renders a snapshot as JSON, falling back to fmt when it cannot be marshalled.
// nil and json null produce nil so the column stays NULL.
func SerializeData(data any) *string {
	if data == nil {
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		s := fmt.Sprintf("%+v", data)
		return &s
	}
	if string(raw) == "null" {
		return nil
	}

	s := string(raw)
	return &s
}
