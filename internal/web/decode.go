package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/store"
)

// maxJSONBody caps record payloads.
const maxJSONBody = 1 << 20

// decodeRecord reads a flat JSON object into a store.Record. Strings pass
// through, numbers keep their literal text, booleans become "true"/"false"
// and null becomes "". Nested values are rejected.
func decodeRecord(w http.ResponseWriter, r *http.Request) (store.Record, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errRequestTooLarge
		}
		return nil, &core.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	if raw == nil {
		return nil, &core.ValidationError{Message: "invalid request body: expected a JSON object"}
	}

	rec := make(store.Record, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			rec[k] = val
		case json.Number:
			rec[k] = val.String()
		case bool:
			rec[k] = strconv.FormatBool(val)
		case nil:
			rec[k] = ""
		default:
			return nil, &core.ValidationError{
				Field:   k,
				Message: "invalid request body: value must be a string, number or boolean",
			}
		}
	}
	return rec, nil
}
