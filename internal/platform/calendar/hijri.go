// Package calendar renders dates in the Gregorian or Hijri calendar.
//
// Hijri dates use the tabular (civil) Islamic calendar, which can differ by a
// day from sighting-based or Umm al-Qura calendars.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

type System string

const (
	Gregorian System = "gregorian"
	Hijri     System = "hijri"
)

func ParseSystem(value string) System {
	if strings.EqualFold(strings.TrimSpace(value), string(Hijri)) {
		return Hijri
	}
	return Gregorian
}

type HijriDate struct {
	Year  int
	Month int
	Day   int
}

var hijriMonths = map[string][12]string{
	"en": {
		"Muharram", "Safar", "Rabi' al-Awwal", "Rabi' al-Thani",
		"Jumada al-Awwal", "Jumada al-Thani", "Rajab", "Sha'ban",
		"Ramadan", "Shawwal", "Dhul-Qi'dah", "Dhul-Hijjah",
	},
	"ar": {
		"محرم", "صفر", "ربيع الأول", "ربيع الآخر",
		"جمادى الأولى", "جمادى الآخرة", "رجب", "شعبان",
		"رمضان", "شوال", "ذو القعدة", "ذو الحجة",
	},
}

// julianDayNumber is valid for proleptic Gregorian dates after 4800 BC.
func julianDayNumber(t time.Time) int {
	y, m, d := t.Date()
	a := (14 - int(m)) / 12
	yy := y + 4800 - a
	mm := int(m) + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}

// ToHijri converts the calendar date of t. Dates before 16 July 622 (Julian)
// are outside the calendar and return the zero value.
func ToHijri(t time.Time) HijriDate {
	jd := julianDayNumber(t)
	if jd < 1948440 {
		return HijriDate{}
	}
	l := jd - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month := (24 * l) / 709
	day := l - (709*month)/24
	year := 30*n + j - 30
	return HijriDate{Year: year, Month: month, Day: day}
}

// MonthNames returns the Hijri month names for lang, defaulting to English.
func MonthNames(lang string) [12]string {
	if names, ok := hijriMonths[lang]; ok {
		return names
	}
	return hijriMonths["en"]
}

func FormatHijri(date HijriDate, lang string) string {
	if date.Month < 1 || date.Month > 12 {
		return ""
	}
	name := MonthNames(lang)[date.Month-1]
	if lang == "ar" {
		return fmt.Sprintf("%d %s %d هـ", date.Day, name, date.Year)
	}
	return fmt.Sprintf("%s %d, %d AH", name, date.Day, date.Year)
}

// Format renders t as YYYY-MM-DD or as a Hijri date string.
func Format(t time.Time, system System, lang string) string {
	if system == Hijri {
		return FormatHijri(ToHijri(t), lang)
	}
	return t.Format("2006-01-02")
}
