package utils

import (
	"fmt"
	"hash/fnv"
	"time"
)

var BaseXtermAnsiColorNames = []string{
	"maroon",
	"green",
	"olive",
	"navy",
	"purple",
	"teal",
	"silver",
	"red",
	"lime",
	"yellow",
	"blue",
	"fuchsia",
	"aqua",
}

// NickColor picks a stable colour for a nickname so the same occupant is
// always drawn the same way.
func NickColor(nick string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nick))
	return BaseXtermAnsiColorNames[h.Sum32()%uint32(len(BaseXtermAnsiColorNames))]
}

func FormatPrettyTime(t time.Time) string {
	return formatPrettyTimeAt(t, time.Now())
}

func formatPrettyTimeAt(t, now time.Time) string {
	t = t.In(now.Location())
	year, month, day := t.Date()
	nowYear, nowMonth, nowDay := now.Date()

	timePart := t.Format("15:04")

	if year == nowYear && month == nowMonth && day == nowDay {
		return fmt.Sprintf("Today %s", timePart)
	}

	yesterday := now.AddDate(0, 0, -1)
	if year == yesterday.Year() && month == yesterday.Month() && day == yesterday.Day() {
		return fmt.Sprintf("Yesterday %s", timePart)
	}

	if year == nowYear {
		return fmt.Sprintf("%s %d %s", t.Format("Jan"), day, timePart)
	}

	return fmt.Sprintf("%d %s %02d %s", year, t.Format("Jan"), day, timePart)
}
