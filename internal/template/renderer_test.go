package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cents(v int64) *int64 { return &v }
func days(v int) *int      { return &v }

func TestRender_ReminderMessage(t *testing.T) {
	got := Render("Olá {cliente}, sua fatura de {valor} vence em {dias_para_vencer} dias.", Vars{
		CustomerName: "Ana",
		AmountCents:  cents(10000),
		DaysUntilDue: days(3),
	})
	assert.Equal(t, "Olá Ana, sua fatura de R$ 100,00 vence em 3 dias.", got)
}

func TestRender_OverdueMessage(t *testing.T) {
	got := Render("{cliente}, sua fatura de {valor} está atrasada há {dias_atraso} dias: {link}", Vars{
		CustomerName: "Bruno",
		AmountCents:  cents(123456),
		DaysOverdue:  days(7),
		PaymentLink:  "https://pay.example/abc",
	})
	assert.Equal(t, "Bruno, sua fatura de R$ 1.234,56 está atrasada há 7 dias: https://pay.example/abc", got)
}

func TestRender_UnknownPlaceholderLeftIntact(t *testing.T) {
	got := Render("Oi {cliente}, veja {desconto}.", Vars{CustomerName: "Carla"})
	assert.Equal(t, "Oi Carla, veja {desconto}.", got)
}

func TestRender_RepeatedPlaceholders(t *testing.T) {
	got := Render("{cliente} {cliente}", Vars{CustomerName: "Duda"})
	assert.Equal(t, "Duda Duda", got)
}

// One template can serve several message types: variables that make no sense
// for the type at hand are simply not supplied, and their placeholders must
// survive rather than collapse to zero values or empty text.
func TestRender_UnsuppliedPlaceholdersLeftIntact(t *testing.T) {
	got := Render("Pague em {link}; atrasada há {dias_atraso} dias.", Vars{CustomerName: "Ana"})
	assert.Equal(t, "Pague em {link}; atrasada há {dias_atraso} dias.", got)

	got = Render("{valor} / {dias_para_vencer} / {link}", Vars{})
	assert.Equal(t, "{valor} / {dias_para_vencer} / {link}", got)
}

func TestRender_ZeroDaysIsSupplied(t *testing.T) {
	got := Render("Vence em {dias_para_vencer} dias.", Vars{DaysUntilDue: days(0)})
	assert.Equal(t, "Vence em 0 dias.", got)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "R$ 100,00", FormatAmount(10000))
	assert.Equal(t, "R$ 0,50", FormatAmount(50))
	assert.Equal(t, "R$ 1.000.000,00", FormatAmount(100000000))
}
