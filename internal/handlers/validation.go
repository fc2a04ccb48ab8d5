package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"roundup/internal/money"
	"roundup/internal/validator"
)

// amountField accepts an amount as a JSON number or a numeric string.
type amountField struct {
	raw   string
	isSet bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	a.isSet = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.raw)
	}
	a.raw = string(data)
	return nil
}

func (a amountField) Set() bool {
	return a.isSet
}

func (a amountField) Float() (float64, error) {
	return money.ParseAmount(a.raw)
}

// decodeAndValidate decodes the JSON body into dst and runs its validate tags. It writes the
// error response itself and reports whether the handler should continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return false
	}
	fields, err := validator.Struct(dst)
	if errors.Is(err, validator.ErrInvalidRequest) {
		respondInvalid(w, fields)
		return false
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload")
		return false
	}
	return true
}
