package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func bal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccount_CanAfford(t *testing.T) {
	a := &Account{AvailableBalance: bal("100")}

	if !a.CanAfford(bal("100")) {
		t.Error("exact balance must afford the margin")
	}
	if a.CanAfford(bal("100.00000001")) {
		t.Error("margin above balance must not be affordable")
	}
}

func TestAccount_ReserveMargin(t *testing.T) {
	t.Run("Market order debits available only", func(t *testing.T) {
		a := &Account{AvailableBalance: bal("1000"), FrozenBalance: bal("0")}
		a.ReserveMargin(bal("100"), false)

		if !a.AvailableBalance.Equal(bal("900")) {
			t.Errorf("available = %s, want 900", a.AvailableBalance)
		}
		if !a.FrozenBalance.Equal(bal("0")) {
			t.Errorf("frozen = %s, want 0", a.FrozenBalance)
		}
	})

	t.Run("Pending order parks margin in frozen", func(t *testing.T) {
		a := &Account{AvailableBalance: bal("1000"), FrozenBalance: bal("0")}
		a.ReserveMargin(bal("100"), true)

		if !a.AvailableBalance.Equal(bal("900")) {
			t.Errorf("available = %s, want 900", a.AvailableBalance)
		}
		if !a.FrozenBalance.Equal(bal("100")) {
			t.Errorf("frozen = %s, want 100", a.FrozenBalance)
		}
	})
}

func TestAccount_CancelRoundTrip(t *testing.T) {
	// Reserving for a pending order and releasing it restores both
	// balances exactly.
	a := &Account{AvailableBalance: bal("1000"), FrozenBalance: bal("50")}

	a.ReserveMargin(bal("100"), true)
	a.ReleaseMargin(bal("100"))

	if !a.AvailableBalance.Equal(bal("1000")) {
		t.Errorf("available = %s, want 1000", a.AvailableBalance)
	}
	if !a.FrozenBalance.Equal(bal("50")) {
		t.Errorf("frozen = %s, want 50", a.FrozenBalance)
	}
}

func TestAccount_ActivationAndPayout(t *testing.T) {
	a := &Account{AvailableBalance: bal("900"), FrozenBalance: bal("100")}

	// Limit order activates: margin leaves frozen, stays committed.
	a.CommitMargin(bal("100"))
	if !a.FrozenBalance.Equal(bal("0")) {
		t.Errorf("frozen after activation = %s, want 0", a.FrozenBalance)
	}
	if !a.AvailableBalance.Equal(bal("900")) {
		t.Errorf("available after activation = %s, want 900", a.AvailableBalance)
	}

	// Position closes with a 100 profit: payout = margin + pnl.
	a.CreditPayout(bal("200"))
	if !a.AvailableBalance.Equal(bal("1100")) {
		t.Errorf("available after payout = %s, want 1100", a.AvailableBalance)
	}
}
