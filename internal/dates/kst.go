// Package dates holds the calendar helpers shared by the filter store and the deep link router.
// Trading days are keyed in Korea Standard Time regardless of the device time zone.
package dates

import (
	"regexp"
	"time"
)

// DayLayout is the layout of a trading day key (YYYY-MM-DD).
const DayLayout = "2006-01-02"

var kst = time.FixedZone("KST", 9*60*60)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TodayKST returns the KST calendar day containing now.
func TodayKST(now time.Time) string {
	return now.In(kst).Format(DayLayout)
}

// IsValidDay reports whether s is a well formed, existing calendar day.
func IsValidDay(s string) bool {
	if !dayPattern.MatchString(s) {
		return false
	}
	_, err := time.ParseInLocation(DayLayout, s, kst)
	return err == nil
}
