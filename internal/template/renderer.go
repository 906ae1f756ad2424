// Package template renders customer-facing billing messages. Templates are
// plain text with named placeholders in curly braces, written in Brazilian
// Portuguese.
package template

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholders recognized by Render. Unknown placeholders are left as-is so
// typos surface in the delivered text instead of failing silently.
const (
	PlaceholderCustomer     = "{cliente}"
	PlaceholderAmount       = "{valor}"
	PlaceholderDaysUntilDue = "{dias_para_vencer}"
	PlaceholderDaysOverdue  = "{dias_atraso}"
	PlaceholderLink         = "{link}"
)

// Vars carries the values substituted into a template. Nil numeric fields and
// empty strings count as unsupplied; their placeholders are left untouched so
// one template can serve more than one message type. AmountCents is the
// invoice amount in cents.
type Vars struct {
	CustomerName string
	AmountCents  *int64
	DaysUntilDue *int
	DaysOverdue  *int
	PaymentLink  string
}

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount formats cents as Brazilian currency, e.g. 10000 -> "R$ 100,00".
func FormatAmount(cents int64) string {
	return ptBR.Sprintf("R$ %.2f", float64(cents)/100)
}

// Render substitutes each supplied placeholder in tmpl with the matching
// value from vars. It never fails; placeholders with no supplied value pass
// through unchanged.
func Render(tmpl string, vars Vars) string {
	pairs := make([]string, 0, 10)
	if vars.CustomerName != "" {
		pairs = append(pairs, PlaceholderCustomer, vars.CustomerName)
	}
	if vars.AmountCents != nil {
		pairs = append(pairs, PlaceholderAmount, FormatAmount(*vars.AmountCents))
	}
	if vars.DaysUntilDue != nil {
		pairs = append(pairs, PlaceholderDaysUntilDue, strconv.Itoa(*vars.DaysUntilDue))
	}
	if vars.DaysOverdue != nil {
		pairs = append(pairs, PlaceholderDaysOverdue, strconv.Itoa(*vars.DaysOverdue))
	}
	if vars.PaymentLink != "" {
		pairs = append(pairs, PlaceholderLink, vars.PaymentLink)
	}
	if len(pairs) == 0 {
		return tmpl
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
