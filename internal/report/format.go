// Package report renders calculator results for people: console tables,
// xlsx workbooks, JSON and the plain sections reused by the bot and the web page.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"trade_risk/internal/models"
)

var printer = message.NewPrinter(language.English)

// Money: "1,234.56 (USD)".
func Money(v decimal.Decimal, cur models.Currency) string {
	return printer.Sprintf("%.2f", v.Round(2).InexactFloat64()) + " (" + cur.Code + ")"
}

// Number groups thousands and keeps the given number of decimals.
func Number(v decimal.Decimal, places int32) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", places), v.Round(places).InexactFloat64())
}

// Ratio: reward-to-risk в виде "3.00:1".
func Ratio(v decimal.Decimal) string {
	return Number(v, 2) + ":1"
}

func Percent(v decimal.Decimal) string {
	return Number(v, 2) + "%"
}

func Shares(n int64) string {
	return printer.Sprintf("%d", n)
}
