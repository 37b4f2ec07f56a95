package eligibility

import (
	"testing"

	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/shopspring/decimal"
)

func TestPaymentOptions(t *testing.T) {
	tests := []struct {
		name    string
		state   CheckoutState
		methods []enums.PaymentMethod
		usable  []bool
	}{
		{
			name:    "society hidden without fund",
			state:   CheckoutState{Resources: player(100, 5, 0, 0, 100), CartValue: decimal.NewFromInt(10)},
			methods: []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodBank},
			usable:  []bool{true, false},
		},
		{
			name:    "society offered",
			state:   CheckoutState{Resources: player(0, 0, 20, 0, 100), CartValue: decimal.NewFromInt(10)},
			methods: []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodBank, enums.PaymentMethodSociety},
			usable:  []bool{false, false, true},
		},
		{
			name:    "empty cart blocks all",
			state:   CheckoutState{Resources: player(100, 100, 0, 0, 100), CartEmpty: true},
			methods: []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodBank},
			usable:  []bool{false, false},
		},
		{
			name:    "in flight blocks all",
			state:   CheckoutState{Resources: player(100, 100, 0, 0, 100), CartValue: decimal.NewFromInt(1), InFlight: true},
			methods: []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodBank},
			usable:  []bool{false, false},
		},
		{
			name:    "over weight blocks all",
			state:   CheckoutState{Resources: player(100, 100, 0, 90, 100), CartValue: decimal.NewFromInt(1), CartWeight: 20},
			methods: []enums.PaymentMethod{enums.PaymentMethodCash, enums.PaymentMethodBank},
			usable:  []bool{false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentOptions(tt.state)
			if len(got) != len(tt.methods) {
				t.Fatalf("expected %d options, got %d", len(tt.methods), len(got))
			}
			for i, option := range got {
				if option.Method != tt.methods[i] {
					t.Fatalf("option %d: expected %s, got %s", i, tt.methods[i], option.Method)
				}
				if option.Usable != tt.usable[i] {
					t.Fatalf("option %s: expected usable=%v, got %v (%s)", option.Method, tt.usable[i], option.Usable, option.Reason)
				}
				if !option.Usable && option.Reason == "" {
					t.Fatalf("option %s: blocked without a reason", option.Method)
				}
			}
		})
	}
}

func TestCanPaySocietyNotApplicable(t *testing.T) {
	state := CheckoutState{Resources: player(100, 100, 0, 0, 100), CartValue: decimal.NewFromInt(1)}
	if ok, reason := CanPay(state, enums.PaymentMethodSociety); ok || reason == "" {
		t.Fatalf("expected society to be refused, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := CanPay(state, enums.PaymentMethodCash); !ok {
		t.Fatal("expected cash to be usable")
	}
}
