package handlers

import (
	"encoding/json"
	"net/http"
)

// maxUploadSize caps uploaded ledger and CSV files. A lifetime of
// personal transactions is a few hundred kilobytes at most.
const maxUploadSize = 10 << 20 // 10 MiB

// parseJSON decodes a request body into the given type.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
