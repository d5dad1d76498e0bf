package notify

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a user's list for a Persister.
func Encode(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// Decode parses a persisted list. Empty input is an empty list. Any record
// that is structurally invalid or owned by another user makes the whole list
// corrupt, reported as *CorruptDataError.
func Decode(userID string, data []byte) ([]Record, error) {
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptDataError{UserID: userID, Err: err}
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		switch {
		case r.ID == "":
			return nil, &CorruptDataError{UserID: userID, Err: fmt.Errorf("record %d: missing id", i)}
		case !r.Kind.IsValid():
			return nil, &CorruptDataError{UserID: userID, Err: fmt.Errorf("record %d: unknown kind %q", i, r.Kind)}
		case r.UserID != userID:
			return nil, &CorruptDataError{UserID: userID, Err: fmt.Errorf("record %d: owned by %q", i, r.UserID)}
		}
		if _, dup := seen[r.ID]; dup {
			return nil, &CorruptDataError{UserID: userID, Err: fmt.Errorf("record %d: duplicate id %q", i, r.ID)}
		}
		seen[r.ID] = struct{}{}
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}
