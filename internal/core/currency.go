// Package core holds the bookkeeping domain: transactions, drafts,
// categories, settings and the supported currency set.
package core

import "github.com/shopspring/decimal"

// Currency is reference data for a supported currency.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// Currencies is the fixed set of currencies the ledger accepts.
var Currencies = []Currency{
	{Code: "KES", Name: "Kenyan Shilling", Symbol: "KSh"},
	{Code: "UGX", Name: "Ugandan Shilling", Symbol: "USh"},
	{Code: "TZS", Name: "Tanzanian Shilling", Symbol: "TSh"},
	{Code: "RWF", Name: "Rwandan Franc", Symbol: "RF"},
	{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
	{Code: "GHS", Name: "Ghanaian Cedi", Symbol: "₵"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	{Code: "ETB", Name: "Ethiopian Birr", Symbol: "Br"},
	{Code: "EGP", Name: "Egyptian Pound", Symbol: "E£"},
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
}

// SupportedCurrency reports whether code is in the supported set.
func SupportedCurrency(code string) bool {
	for _, c := range Currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}

// CurrencySymbol returns the display symbol for code, or the code itself
// when the currency is unknown.
func CurrencySymbol(code string) string {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Symbol
		}
	}
	return code
}

// FormatAmount renders an amount with its currency symbol for display.
func FormatAmount(amount decimal.Decimal, code string) string {
	return CurrencySymbol(code) + " " + amount.StringFixed(2)
}
