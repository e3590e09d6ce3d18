package enums

import "testing"

func TestShipmentStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from ShipmentStatus
		to   ShipmentStatus
		want bool
	}{
		{ShipmentStatusPending, ShipmentStatusConfirmed, true},
		{ShipmentStatusConfirmed, ShipmentStatusInTransit, true},
		{ShipmentStatusInTransit, ShipmentStatusDelivered, true},
		{ShipmentStatusPending, ShipmentStatusInTransit, false},
		{ShipmentStatusPending, ShipmentStatusDelivered, false},
		{ShipmentStatusConfirmed, ShipmentStatusPending, false},
		{ShipmentStatusDelivered, ShipmentStatusInTransit, false},
		{ShipmentStatusDelivered, ShipmentStatusDelivered, false},
		{ShipmentStatus("bogus"), ShipmentStatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestShipmentStatusTerminal(t *testing.T) {
	if !ShipmentStatusDelivered.IsTerminal() {
		t.Fatal("delivered must be terminal")
	}
	if ShipmentStatusInTransit.IsTerminal() {
		t.Fatal("in_transit must not be terminal")
	}
}

func TestParseShipmentStatus(t *testing.T) {
	status, err := ParseShipmentStatus("in_transit")
	if err != nil || status != ShipmentStatusInTransit {
		t.Fatalf("got %v, %v", status, err)
	}
	if _, err := ParseShipmentStatus("teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSpaceStatusIsBookable(t *testing.T) {
	if !SpaceStatusAvailable.IsBookable() || !SpaceStatusPartial.IsBookable() {
		t.Fatal("available and partial must be bookable")
	}
	if SpaceStatusBooked.IsBookable() {
		t.Fatal("booked must not be bookable")
	}
}

func TestTransactionStatusTerminal(t *testing.T) {
	if !TransactionStatusCompleted.IsTerminal() || !TransactionStatusFailed.IsTerminal() {
		t.Fatal("completed and failed are terminal")
	}
	if TransactionStatusPending.IsTerminal() {
		t.Fatal("pending is not terminal")
	}
}
