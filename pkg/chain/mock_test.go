package chain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cargochainlabs/cargochain-backend/pkg/errors"
)

func validInput() SpaceTokenInput {
	return SpaceTokenInput{
		Source:        "New York",
		Destination:   "Chicago",
		Length:        6,
		Width:         2.4,
		Height:        2.6,
		MaxWeight:     2000,
		VehicleType:   "truck",
		DepartureDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		PriceValue:    "3.25",
	}
}

func pinnedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	}
}

func TestMintSpaceTokenFormat(t *testing.T) {
	client := NewMockClient()
	client.Now = pinnedClock()

	token, err := client.MintSpaceToken(context.Background(), validInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !strings.HasPrefix(token, "T-0x") {
		t.Fatalf("expected T-0x prefix, got %q", token)
	}
	hexPart := strings.TrimPrefix(token, "T-0x")
	if len(hexPart) < 8 {
		t.Fatalf("expected at least 8 hex digits, got %q", hexPart)
	}
	if hexPart != strings.ToUpper(hexPart) {
		t.Fatalf("expected uppercase hex, got %q", hexPart)
	}
}

func TestMintSpaceTokenDeterministicWithinDay(t *testing.T) {
	client := NewMockClient()
	client.Now = pinnedClock()

	first, err := client.MintSpaceToken(context.Background(), validInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Same day, different wall-clock time.
	client.Now = func() time.Time {
		return time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	}
	second, err := client.MintSpaceToken(context.Background(), validInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if first != second {
		t.Fatalf("same attributes on the same day must mint the same token: %q vs %q", first, second)
	}
}

func TestMintSpaceTokenVariesWithAttributes(t *testing.T) {
	client := NewMockClient()
	client.Now = pinnedClock()

	base, err := client.MintSpaceToken(context.Background(), validInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := validInput()
	other.Destination = "Boston"
	changed, err := client.MintSpaceToken(context.Background(), other)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if base == changed {
		t.Fatal("different attributes should mint different tokens")
	}
}

func TestMintSpaceTokenFailsClosed(t *testing.T) {
	client := NewMockClient()
	client.Now = pinnedClock()

	cases := []struct {
		name   string
		mutate func(*SpaceTokenInput)
	}{
		{"missing source", func(in *SpaceTokenInput) { in.Source = "" }},
		{"missing destination", func(in *SpaceTokenInput) { in.Destination = "" }},
		{"zero length", func(in *SpaceTokenInput) { in.Length = 0 }},
		{"negative weight", func(in *SpaceTokenInput) { in.MaxWeight = -5 }},
		{"missing vehicle", func(in *SpaceTokenInput) { in.VehicleType = "" }},
		{"zero departure", func(in *SpaceTokenInput) { in.DepartureDate = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			token, err := client.MintSpaceToken(context.Background(), input)
			if err == nil {
				t.Fatalf("expected validation error, got token %q", token)
			}
			if !errors.Is(err, errors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}
