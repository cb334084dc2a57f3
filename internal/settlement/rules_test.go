package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"tradesim/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestLiquidationPrice(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		leverage int
		side     domain.Side
		want     string
	}{
		{"Long 10x", "100", 10, domain.SideLong, "90.5"},
		{"Short 10x", "100", 10, domain.SideShort, "109.5"},
		{"Long 2x", "100", 2, domain.SideLong, "50.5"},
		{"Short 2x", "100", 2, domain.SideShort, "149.5"},
		{"Long 3x rounds to 4 places", "100", 3, domain.SideLong, "67.1667"},
		{"Long 50x", "200", 50, domain.SideLong, "197"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LiquidationPrice(d(tt.entry), tt.leverage, tt.side)
			if !got.Equal(d(tt.want)) {
				t.Errorf("LiquidationPrice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLiquidationPrice_AdverseSideOfEntry(t *testing.T) {
	entry := d("1234.5678")
	for leverage := MinLeverage; leverage <= MaxLeverage; leverage++ {
		long := LiquidationPrice(entry, leverage, domain.SideLong)
		if !long.LessThan(entry) {
			t.Errorf("leverage %d: long liquidation %s not below entry %s", leverage, long, entry)
		}
		short := LiquidationPrice(entry, leverage, domain.SideShort)
		if !short.GreaterThan(entry) {
			t.Errorf("leverage %d: short liquidation %s not above entry %s", leverage, short, entry)
		}
	}
}

func TestPnL(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		exit     string
		margin   string
		leverage int
		side     domain.Side
		want     string
	}{
		{"Long 10 percent up", "100", "110", "100", 10, domain.SideLong, "100"},
		{"Long 10 percent down", "100", "90", "100", 10, domain.SideLong, "-100"},
		{"Short 10 percent up", "100", "110", "100", 10, domain.SideShort, "-100"},
		{"Short 10 percent down", "100", "90", "100", 10, domain.SideShort, "100"},
		{"Flat", "100", "100", "50", 20, domain.SideLong, "0"},
		{"Fractional move", "200", "201", "100", 10, domain.SideLong, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PnL(d(tt.entry), d(tt.exit), d(tt.margin), tt.leverage, tt.side)
			if !got.Equal(d(tt.want)) {
				t.Errorf("PnL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPnL_SignProperty(t *testing.T) {
	entry := d("3500")
	margin := d("100")
	exits := []string{"3500.0001", "3499.9999", "4000", "3000"}

	for _, exit := range exits {
		long := PnL(entry, d(exit), margin, 5, domain.SideLong)
		short := PnL(entry, d(exit), margin, 5, domain.SideShort)

		wantLongPositive := d(exit).GreaterThan(entry)
		if long.IsPositive() != wantLongPositive {
			t.Errorf("exit %s: long pnl %s has wrong sign", exit, long)
		}
		wantShortPositive := d(exit).LessThan(entry)
		if short.IsPositive() != wantShortPositive {
			t.Errorf("exit %s: short pnl %s has wrong sign", exit, short)
		}
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name   string
		margin string
		pnl    string
		want   string
	}{
		{"Profit", "100", "100", "200"},
		{"PartialLoss", "100", "-40", "60"},
		{"TotalLoss", "100", "-100", "0"},
		{"LossBeyondMargin", "100", "-150", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Payout(d(tt.margin), d(tt.pnl))
			if !got.Equal(d(tt.want)) {
				t.Errorf("Payout() = %s, want %s", got, tt.want)
			}
			if got.IsNegative() {
				t.Errorf("Payout() = %s, must never be negative", got)
			}
		})
	}
}

func TestPnLPercent(t *testing.T) {
	if got := PnLPercent(d("100"), d("100")); !got.Equal(d("100")) {
		t.Errorf("PnLPercent(100, 100) = %s, want 100", got)
	}
	if got := PnLPercent(d("-25"), d("100")); !got.Equal(d("-25")) {
		t.Errorf("PnLPercent(-25, 100) = %s, want -25", got)
	}
}

func TestTargetHit(t *testing.T) {
	target := d("100")
	tests := []struct {
		name  string
		side  domain.Side
		price string
		want  bool
	}{
		{"Long above target", domain.SideLong, "101", false},
		{"Long at target", domain.SideLong, "100", true},
		{"Long below target", domain.SideLong, "99", true},
		{"Short below target", domain.SideShort, "99", false},
		{"Short at target", domain.SideShort, "100", true},
		{"Short above target", domain.SideShort, "101", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetHit(tt.side, target, d(tt.price)); got != tt.want {
				t.Errorf("TargetHit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTakeProfitAndStopLossHit(t *testing.T) {
	if TakeProfitHit(domain.SideLong, nil, d("1000000")) {
		t.Error("absent take profit must never trigger")
	}
	if StopLossHit(domain.SideShort, nil, d("1000000")) {
		t.Error("absent stop loss must never trigger")
	}

	if !TakeProfitHit(domain.SideLong, dp("110"), d("110")) {
		t.Error("long take profit at level must trigger")
	}
	if TakeProfitHit(domain.SideLong, dp("110"), d("109.99")) {
		t.Error("long take profit below level must not trigger")
	}
	if !TakeProfitHit(domain.SideShort, dp("90"), d("89")) {
		t.Error("short take profit below level must trigger")
	}

	if !StopLossHit(domain.SideLong, dp("95"), d("94")) {
		t.Error("long stop loss below level must trigger")
	}
	if StopLossHit(domain.SideLong, dp("95"), d("96")) {
		t.Error("long stop loss above level must not trigger")
	}
	if !StopLossHit(domain.SideShort, dp("105"), d("106")) {
		t.Error("short stop loss above level must trigger")
	}
}

func TestLiquidationHit(t *testing.T) {
	if !LiquidationHit(domain.SideLong, d("90.5"), d("90.5")) {
		t.Error("long liquidation at level must trigger")
	}
	if LiquidationHit(domain.SideLong, d("90.5"), d("90.51")) {
		t.Error("long liquidation above level must not trigger")
	}
	if !LiquidationHit(domain.SideShort, d("109.5"), d("110")) {
		t.Error("short liquidation above level must trigger")
	}
}

func TestCloseTrigger_Precedence(t *testing.T) {
	// Levels are deliberately inconsistent so a single price can satisfy
	// several triggers at once; the most severe must win.
	tests := []struct {
		name       string
		position   *domain.Position
		price      string
		wantReason domain.CloseReason
		wantHit    bool
	}{
		{
			name: "Liquidation beats take profit",
			position: &domain.Position{
				Side:             domain.SideLong,
				LiquidationPrice: d("90"),
				TakeProfit:       dp("80"),
			},
			price:      "85",
			wantReason: domain.ClosedByLiquidation,
			wantHit:    true,
		},
		{
			name: "Liquidation beats stop loss",
			position: &domain.Position{
				Side:             domain.SideLong,
				LiquidationPrice: d("90"),
				StopLoss:         dp("88"),
			},
			price:      "85",
			wantReason: domain.ClosedByLiquidation,
			wantHit:    true,
		},
		{
			name: "Stop loss beats take profit",
			position: &domain.Position{
				Side:             domain.SideLong,
				LiquidationPrice: d("50"),
				StopLoss:         dp("88"),
				TakeProfit:       dp("80"),
			},
			price:      "85",
			wantReason: domain.ClosedByStopLoss,
			wantHit:    true,
		},
		{
			name: "Take profit alone",
			position: &domain.Position{
				Side:             domain.SideLong,
				LiquidationPrice: d("50"),
				TakeProfit:       dp("110"),
			},
			price:      "115",
			wantReason: domain.ClosedByTakeProfit,
			wantHit:    true,
		},
		{
			name: "Nothing hit",
			position: &domain.Position{
				Side:             domain.SideLong,
				LiquidationPrice: d("90.5"),
				StopLoss:         dp("95"),
				TakeProfit:       dp("110"),
			},
			price:   "100",
			wantHit: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, hit := CloseTrigger(tt.position, d(tt.price))
			if hit != tt.wantHit {
				t.Fatalf("CloseTrigger() hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && reason != tt.wantReason {
				t.Errorf("CloseTrigger() reason = %s, want %s", reason, tt.wantReason)
			}
		})
	}
}

func TestValidateOrderParams(t *testing.T) {
	tests := []struct {
		name     string
		margin   string
		leverage int
		wantErr  bool
	}{
		{"Valid", "10", 2, false},
		{"Valid max leverage", "100", 50, false},
		{"Leverage too low", "100", 1, true},
		{"Leverage too high", "100", 51, true},
		{"Margin below minimum", "9.99", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderParams(d(tt.margin), tt.leverage)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOrderParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !domain.IsValidationError(err) {
				t.Errorf("ValidateOrderParams() error = %v, want a ValidationError", err)
			}
		})
	}
}

func TestValidateProtectiveLevels(t *testing.T) {
	entry := d("100")
	tests := []struct {
		name    string
		side    domain.Side
		tp      *decimal.Decimal
		sl      *decimal.Decimal
		wantErr bool
	}{
		{"Long valid", domain.SideLong, dp("110"), dp("95"), false},
		{"Long no levels", domain.SideLong, nil, nil, false},
		{"Long TP at entry", domain.SideLong, dp("100"), nil, true},
		{"Long TP below entry", domain.SideLong, dp("99"), nil, true},
		{"Long SL above entry", domain.SideLong, nil, dp("101"), true},
		{"Short valid", domain.SideShort, dp("90"), dp("105"), false},
		{"Short TP above entry", domain.SideShort, dp("101"), nil, true},
		{"Short SL below entry", domain.SideShort, nil, dp("99"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProtectiveLevels(tt.side, entry, tt.tp, tt.sl)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProtectiveLevels() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
