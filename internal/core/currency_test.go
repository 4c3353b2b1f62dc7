package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSupportedCurrency(t *testing.T) {
	for _, c := range Currencies {
		if !SupportedCurrency(c.Code) {
			t.Fatalf("%s should be supported", c.Code)
		}
	}
	if SupportedCurrency("EUR") {
		t.Fatalf("EUR is not in the supported set")
	}
	if SupportedCurrency("") {
		t.Fatalf("empty code should not be supported")
	}
}

func TestFormatAmount(t *testing.T) {
	amt := decimal.RequireFromString("1150")
	if got := FormatAmount(amt, "KES"); got != "KSh 1150.00" {
		t.Fatalf("got %q", got)
	}
	// Unknown code falls back to the code itself.
	if got := FormatAmount(amt, "EUR"); got != "EUR 1150.00" {
		t.Fatalf("got %q", got)
	}
}
