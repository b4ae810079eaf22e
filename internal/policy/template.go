package policy

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
)

// maxAmountFractionDigits bounds {{amount}} rendering (spec.md §4.3).
const maxAmountFractionDigits = 9

// selectTemplate returns the destination-specific template, falling back to
// the mandatory "default" entry.
func selectTemplate(templates map[string]string, dest monconfig.DestinationID) string {
	if tmpl, ok := templates[string(dest)]; ok {
		return tmpl
	}
	return templates["default"]
}

// render substitutes the fixed placeholder set into tmpl, plus the
// {{explorer_url}} extra placeholder SPEC_FULL.md §5.3 adds on top of
// spec.md §4.3's four. Unknown placeholders (anything not in this set) are
// left literally.
func render(tmpl, description string, ev classifier.Event, explorerURL string) string {
	r := strings.NewReplacer(
		"{{description}}", description,
		"{{amount}}", formatAmount(ev.AmountHuman),
		"{{currency_unit}}", string(ev.CurrencyUnit),
		"{{tx_hash}}", ev.TransactionSignature,
		"{{explorer_url}}", txExplorerLink(explorerURL, ev.TransactionSignature),
	)
	return r.Replace(tmpl)
}

// txExplorerLink builds the full transaction link {{explorer_url}} renders
// to: the config's explorer_url joined with the tx signature (SPEC_FULL.md
// §5.3: "config's top-level explorer_url plus {{tx_hash}}").
func txExplorerLink(explorerURL, txHash string) string {
	if explorerURL == "" {
		return ""
	}
	return strings.TrimRight(explorerURL, "/") + "/tx/" + txHash
}

// formatAmount renders a decimal with up to 9 fractional digits, trailing
// zeros trimmed, never in scientific notation.
func formatAmount(d decimal.Decimal) string {
	s := d.Truncate(maxAmountFractionDigits).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	// decimal.String() never emits scientific notation, but guard against
	// an empty mantissa left by trimming e.g. "0.000000000" -> "0".
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}
