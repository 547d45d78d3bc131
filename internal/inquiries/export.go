package inquiries

import (
	"bytes"
	"strconv"
	"time"
)

const csvHeader = "Date,Time,Name,Email,Phone,Product,Quantity,Status,Deal Value"

// ExportCSV renders one row per inquiry. Name, product, quantity and the
// legacy time string are wrapped in double quotes; embedded quotes are written
// as-is.
func ExportCSV(items []Inquiry, loc *time.Location) []byte {
	if loc == nil {
		loc = time.UTC
	}
	var buf bytes.Buffer
	buf.WriteString(csvHeader)
	buf.WriteByte('\n')

	for _, inq := range items {
		date, clock := "", quoted(inq.TimeString)
		if !inq.CreatedAt.IsZero() {
			t := inq.CreatedAt.In(loc)
			date = t.Format("2006-01-02")
			clock = t.Format("15:04")
		}
		deal := ""
		if inq.DealValue != nil {
			deal = strconv.FormatFloat(*inq.DealValue, 'f', -1, 64)
		}

		buf.WriteString(date)
		buf.WriteByte(',')
		buf.WriteString(clock)
		buf.WriteByte(',')
		buf.WriteString(quoted(inq.Name))
		buf.WriteByte(',')
		buf.WriteString(inq.Email)
		buf.WriteByte(',')
		buf.WriteString(inq.Phone)
		buf.WriteByte(',')
		buf.WriteString(quoted(inq.ProductInterest))
		buf.WriteByte(',')
		buf.WriteString(quoted(inq.Quantity))
		buf.WriteByte(',')
		buf.WriteString(string(inq.Status))
		buf.WriteByte(',')
		buf.WriteString(deal)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func quoted(s string) string {
	return `"` + s + `"`
}

func ExportFilename(now time.Time) string {
	return "inquiries_export_" + now.Format("20060102") + ".csv"
}
