// Package extract turns unstructured text into transaction drafts. It is
// pure: no I/O, no stored state, the same input always yields the same
// classification.
//
// Two paths exist because the vocabularies differ: FreeText handles spoken
// phrases ("Sold tomatoes for 500"), Receipt handles OCR output with a
// labeled total line. The keyword sets are deliberately kept separate.
package extract

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trackrise/internal/core"
)

// ErrNoAmount reports that no usable amount was found in free text. Callers
// fall back to manual entry; this is not a fault condition.
var ErrNoAmount = errors.New("no amount found in text")

var (
	incomeSignals = regexp.MustCompile(`(?i)sold|received|earned|income|revenue|profit`)
	amountToken   = regexp.MustCompile(`\d+[\d,]*(\.\d+)?`)

	// A "total" label, an optional currency marker, then the amount.
	totalLine   = regexp.MustCompile(`(?i)total:?\s*(?:kshs?\.?|ush|tsh|r|₦|₵)?\s*[\d,]+\.?\d*`)
	numberToken = regexp.MustCompile(`[\d,]+\.?\d*`)
)

type categoryRule struct {
	keywords *regexp.Regexp
	category string
}

// Free-text rules are tried in order; the first match wins.
var freeTextIncomeRules = []categoryRule{
	{regexp.MustCompile(`(?i)tomato|vegetable|fruit|maize|produce|crop|harvest`), "sales"},
	{regexp.MustCompile(`(?i)service|repair|work|labor`), "services"},
	{regexp.MustCompile(`(?i)loan|borrow|credit`), "loans"},
}

var freeTextExpenseRules = []categoryRule{
	{regexp.MustCompile(`(?i)stock|inventory|goods|purchase|buy`), "inventory"},
	{regexp.MustCompile(`(?i)rent|lease`), "rent"},
	{regexp.MustCompile(`(?i)salary|wage|pay|staff`), "salaries"},
	{regexp.MustCompile(`(?i)transport|travel|fuel|bus|matatu|boda`), "transport"},
	{regexp.MustCompile(`(?i)electricity|water|power|utility`), "utilities"},
}

// Receipt vocabulary is broader on goods because printed receipts itemize
// products rather than describe activities.
var receiptRules = []categoryRule{
	{regexp.MustCompile(`(?i)food|grocery|supermarket|fruit|vegetable|tomato|onion|rice|flour|sugar`), "inventory"},
	{regexp.MustCompile(`(?i)transport|taxi|boda|bus|matatu|travel`), "transport"},
	{regexp.MustCompile(`(?i)rent|lease`), "rent"},
	{regexp.MustCompile(`(?i)electricity|water|utility|power`), "utilities"},
}

const (
	maxDescriptionLen = 50
	receiptSuffix     = " (Receipt)"
)

// FreeText extracts a draft from a voice transcript. Income signal words
// take precedence; everything else defaults to expense. The first numeric
// token becomes the amount; without one there is no draft.
func FreeText(text, defaultCurrency string) (core.Draft, error) {
	typ := core.Expense
	if incomeSignals.MatchString(text) {
		typ = core.Income
	}

	amount, ok := firstAmount(text)
	if !ok || !amount.IsPositive() {
		return core.Draft{}, ErrNoAmount
	}

	category := fallbackCategory(typ)
	rules := freeTextExpenseRules
	if typ == core.Income {
		rules = freeTextIncomeRules
	}
	for _, rule := range rules {
		if rule.keywords.MatchString(text) {
			category = rule.category
			break
		}
	}

	return core.Draft{
		Amount:       amount,
		Description:  text,
		Type:         typ,
		Category:     category,
		CurrencyCode: defaultCurrency,
		Date:         time.Now(),
	}, nil
}

// Receipt extracts a draft from OCR output. Receipts are always expenses.
// A missing total line yields a zero amount rather than a failure, so the
// caller can still present the draft for correction.
func Receipt(text, defaultCurrency string) (core.Draft, error) {
	amount := decimal.Zero
	if match := totalLine.FindString(text); match != "" {
		if numStr := numberToken.FindString(match); numStr != "" {
			if parsed, err := decimal.NewFromString(strings.ReplaceAll(numStr, ",", "")); err == nil {
				amount = parsed
			}
		}
	}

	description := firstNonBlankLine(text)
	if description == "" {
		description = "Receipt"
	}
	if runes := []rune(description); len(runes) > maxDescriptionLen {
		description = string(runes[:maxDescriptionLen-3]) + "..."
	}
	description += receiptSuffix

	category := "other_expense"
	for _, rule := range receiptRules {
		if rule.keywords.MatchString(text) {
			category = rule.category
			break
		}
	}

	return core.Draft{
		Amount:       amount,
		Description:  description,
		Type:         core.Expense,
		Category:     category,
		CurrencyCode: defaultCurrency,
		Date:         time.Now(),
	}, nil
}

func firstAmount(text string) (decimal.Decimal, bool) {
	token := amountToken.FindString(text)
	if token == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func fallbackCategory(typ core.TransactionType) string {
	if typ == core.Income {
		return "sales"
	}
	return "other_expense"
}
