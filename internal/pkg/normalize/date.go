package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date shapes the boards are known to publish, tried in order. Day always
// precedes month.
var (
	reDayMonthYear4 = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	reDayTextYear   = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})`)
	reDayMonthYear2 = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2})\b`)
)

// DateFragment matches a date-looking substring inside a longer header such
// as "Prices as on 07/11/2025". Space separators are accepted here so
// textual forms survive the cut.
var DateFragment = regexp.MustCompile(`\d{1,2}[/\-.\s]\d{1,2}[/\-.\s]\d{2,4}`)

// ParseDate resolves a published date string to ISO yyyy-mm-dd. Matching
// scans for the first date-shaped substring, so surrounding label text is
// fine. Returns ok=false for anything unparsable or calendar-invalid.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := reDayMonthYear4.FindStringSubmatch(s); m != nil {
		if iso, ok := buildISO(m[3], m[2], m[1]); ok {
			return iso, true
		}
	}

	if m := reDayTextYear.FindStringSubmatch(s); m != nil {
		for _, layout := range []string{"2 Jan 2006", "2 January 2006"} {
			t, err := time.Parse(layout, m[1]+" "+m[2]+" "+m[3])
			if err == nil {
				return t.Format("2006-01-02"), true
			}
		}
	}

	if m := reDayMonthYear2.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[3])
		year := 1900 + yy
		if yy < 70 {
			year = 2000 + yy
		}
		if iso, ok := buildISO(strconv.Itoa(year), m[2], m[1]); ok {
			return iso, true
		}
	}

	return "", false
}

// buildISO validates day/month/year as a real calendar date. time.Date
// normalizes overflow (31 Feb becomes 2 Mar), so the round trip has to agree
// with the input.
func buildISO(year, month, day string) (string, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return "", false
	}

	return t.Format("2006-01-02"), true
}
