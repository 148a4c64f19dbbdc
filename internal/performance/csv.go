package performance

import (
	"encoding/csv"
	"os"
	"strconv"
)

// WriteSeriesCSV writes one row per (date, symbol) valuation point, grouped by date.
// symbols fixes the row order within a date.
func WriteSeriesCSV(path string, res *Result, symbols []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeSeries(csv.NewWriter(f), res, symbols); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeSeries(w *csv.Writer, res *Result, symbols []string) error {
	if err := w.Write([]string{"date", "symbol", "shares", "value"}); err != nil {
		return err
	}

	// Every series has the same length and date axis.
	ordered := res.Symbols(symbols)
	n := 0
	if len(ordered) > 0 {
		n = len(res.Performance[ordered[0]])
	}
	for i := 0; i < n; i++ {
		for _, sym := range ordered {
			p := res.Performance[sym][i]
			row := []string{
				p.Date.Format(DateLayout),
				sym,
				fmtFloat(res.Shares[sym], 6),
				fmtFloat(p.Value, 2),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64, prec int) string {
	return strconv.FormatFloat(x, 'f', prec, 64)
}
