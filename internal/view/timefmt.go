package view

import (
	"time"

	"github.com/tubededentifrice/twitter-clone/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// JustNowThreshold is the age up to which a tweet reads "just now".
const JustNowThreshold = 10 * time.Second

// AbsoluteDateLayout renders dates older than a month, e.g. "Mar 4, 2025".
const AbsoluteDateLayout = "Jan 2, 2006"

func init() {
	lang := language.English

	message.SetString(lang, "time.just_now", "just now")
	message.SetString(lang, "time.seconds_ago", "%d seconds ago")
	message.SetString(lang, "time.minute_ago", "1 minute ago")
	message.SetString(lang, "time.minutes_ago", "%d minutes ago")
	message.SetString(lang, "time.hour_ago", "1 hour ago")
	message.SetString(lang, "time.hours_ago", "%d hours ago")
	message.SetString(lang, "time.day_ago", "1 day ago")
	message.SetString(lang, "time.days_ago", "%d days ago")
}

var printer = message.NewPrinter(language.English)

// FormatRelativeTime describes how long ago ts was, relative to now.
// Buckets are evaluated in order: seconds, minutes, hours, days (< 30), and
// an absolute date beyond that.
func FormatRelativeTime(now, ts time.Time) string {
	delta := now.Sub(ts)
	if delta <= JustNowThreshold {
		return printer.Sprintf("time.just_now")
	}
	if delta < time.Minute {
		return printer.Sprintf("time.seconds_ago", int(delta/time.Second))
	}
	if delta < time.Hour {
		return plural("time.minute_ago", "time.minutes_ago", int(delta/time.Minute))
	}
	if delta < 24*time.Hour {
		return plural("time.hour_ago", "time.hours_ago", int(delta/time.Hour))
	}
	if delta < 30*24*time.Hour {
		return plural("time.day_ago", "time.days_ago", int(delta/(24*time.Hour)))
	}
	return ts.Format(AbsoluteDateLayout)
}

func plural(one, many string, n int) string {
	if n == 1 {
		return printer.Sprintf(one)
	}
	return printer.Sprintf(many, n)
}

// FormatTimestamp is FormatRelativeTime for a raw API timestamp. Values
// that do not parse are shown as received.
func FormatTimestamp(now time.Time, iso string) string {
	ts, err := domain.ParseTimestamp(iso)
	if err != nil {
		return iso
	}
	return FormatRelativeTime(now, ts)
}
