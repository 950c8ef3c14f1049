package models

import "strings"

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
}

const DefaultCurrency = "USD"

// Currencies: порядок важен для отображения кнопок.
var Currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar", Icon: "💵"},
	{Code: "EUR", Symbol: "€", Name: "Euro", Icon: "💶"},
	{Code: "SEK", Symbol: "kr", Name: "Swedish Krona", Icon: "🇸🇪"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Icon: "🇮🇳"},
}

// LookupCurrency is case-insensitive.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencyOrDefault falls back to USD for unknown codes.
func CurrencyOrDefault(code string) Currency {
	if c, ok := LookupCurrency(code); ok {
		return c
	}
	c, _ := LookupCurrency(DefaultCurrency)
	return c
}
