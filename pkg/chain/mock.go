package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/errors"
)

// tokenPrefix marks mock-minted tokens. Downstream consumers treat the
// identifier as opaque.
const tokenPrefix = "T-0x"

// MockClient derives space tokens deterministically from the listing
// attributes and the mint date. Two identical listings minted on the
// same day receive the same token; the uniqueness constraint on
// token_id is what actually prevents duplicate listings.
type MockClient struct {
	// Now is overridable so tests can pin the mint date.
	Now func() time.Time
}

// NewMockClient returns a mock minting client using wall-clock time.
func NewMockClient() *MockClient {
	return &MockClient{Now: time.Now}
}

// MintSpaceToken validates the attribute set and derives the token.
// Fails closed: a missing or non-positive attribute never produces a
// token.
func (m *MockClient) MintSpaceToken(_ context.Context, input SpaceTokenInput) (string, error) {
	if err := validateTokenInput(input); err != nil {
		return "", err
	}

	serialized, err := serializeTokenInput(input, m.now())
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "serialize token input")
	}

	return tokenPrefix + hashHex(serialized), nil
}

func (m *MockClient) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func validateTokenInput(input SpaceTokenInput) error {
	details := map[string]string{}
	if input.Source == "" {
		details["source"] = "required"
	}
	if input.Destination == "" {
		details["destination"] = "required"
	}
	if input.VehicleType == "" {
		details["vehicle_type"] = "required"
	}
	if input.Length <= 0 {
		details["length"] = "must be positive"
	}
	if input.Width <= 0 {
		details["width"] = "must be positive"
	}
	if input.Height <= 0 {
		details["height"] = "must be positive"
	}
	if input.MaxWeight <= 0 {
		details["max_weight"] = "must be positive"
	}
	if input.DepartureDate.IsZero() {
		details["departure_date"] = "required"
	}
	if len(details) > 0 {
		return errors.New(errors.CodeValidation, "incomplete space attributes").WithDetails(details)
	}
	return nil
}

// serializeTokenInput produces the canonical byte string the token hash
// commits to. The timestamp carries only the date part so repeated
// mints within a day stay deterministic.
func serializeTokenInput(input SpaceTokenInput, now time.Time) ([]byte, error) {
	payload := struct {
		SpaceTokenInput
		DepartureDate string `json:"departureDate"`
		Timestamp     string `json:"timestamp"`
	}{
		SpaceTokenInput: input,
		DepartureDate:   input.DepartureDate.UTC().Format("2006-01-02"),
		Timestamp:       now.UTC().Format("2006-01-02"),
	}
	return json.Marshal(payload)
}

// hashHex applies a 32-bit rolling hash (h = h*31 + c with int32
// wraparound) and renders the absolute value as 8 uppercase hex digits.
func hashHex(data []byte) string {
	var hash int32
	for _, c := range data {
		hash = (hash << 5) - hash + int32(c)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return fmt.Sprintf("%08X", abs)
}
