package models

import (
	"github.com/shopspring/decimal"
	"strings"
)

// zeroDecimalCurrencies have no minor unit; amounts in them are whole numbers.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true, "MGA": true,
	"PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// MaxAmount is the largest value the NUMERIC(12,2) amount columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// CurrencyExponent returns the number of decimal places the currency is charged in.
func CurrencyExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// RoundToCurrency rounds amount to what the processor can actually charge in currency.
func RoundToCurrency(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(CurrencyExponent(currency))
}
