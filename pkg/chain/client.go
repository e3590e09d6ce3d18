package chain

import (
	"context"
	"time"
)

// SpaceTokenInput is the attribute set a space token commits to. The
// field order is part of the token derivation contract and must not be
// reordered.
type SpaceTokenInput struct {
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	Length        float64   `json:"length"`
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	MaxWeight     float64   `json:"maxWeight"`
	VehicleType   string    `json:"vehicleType"`
	DepartureDate time.Time `json:"-"`
	PriceValue    string    `json:"price"`
}

// Client mints token identifiers for logistics space listings. The mock
// implementation derives tokens locally; a real chain integration would
// satisfy the same interface.
type Client interface {
	MintSpaceToken(ctx context.Context, input SpaceTokenInput) (string, error)
}
