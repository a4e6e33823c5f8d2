package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/denysvitali/go-datesfinder"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger().WithField("package", "dates")

const isoLayout = "2006-01-02"

// Month-name misspellings seen in extractor output. Not to be grown
// without evidence from real invoices.
var monthTypos = map[string]string{
	"noveber": "November",
}

var numericRe = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})$`)

var textualLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Normalize turns a free-form purchase date string into ISO YYYY-MM-DD.
// Best effort: numeric dates are read day-first, month names are corrected
// for known misspellings, and anything still unparseable collapses to "".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if t, err := time.Parse(isoLayout, s); err == nil {
		return t.Format(isoLayout)
	}

	if m := numericRe.FindStringSubmatch(s); m != nil {
		return normalizeNumeric(m)
	}

	if out := normalizeTextual(s); out != "" {
		return out
	}

	// Last resort: scan for anything date-like in the text.
	found, _ := datesfinder.FindDates(s)
	if len(found) > 0 {
		return found[0].Format(isoLayout)
	}

	log.Debugf("unparseable date %q", s)
	return ""
}

func normalizeNumeric(m []string) string {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	// Day-first unless the value only makes sense month-first.
	if month > 12 && day <= 12 {
		day, month = month, day
	}
	if !validDate(year, month, day) {
		return ""
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(isoLayout)
}

func normalizeTextual(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		key := strings.ToLower(strings.TrimSuffix(w, ","))
		if fixed, ok := monthTypos[key]; ok {
			if strings.HasSuffix(w, ",") {
				fixed += ","
			}
			words[i] = fixed
		}
	}
	s = strings.Join(words, " ")

	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoLayout)
		}
	}
	return ""
}

func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
