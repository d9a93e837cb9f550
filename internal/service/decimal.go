package service

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

// centPrecision reports whether d fits the NUMERIC(12,2) money columns
// without rounding. Sub-cent amounts must fail validation up front, not
// round to 0.00 and trip a DB CHECK.
func centPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
