package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/alialsharqawi/bank-backoffice/internal/clock"
)

// Duration computes a human-readable elapsed time between two
// "D/M/YYYY HH:MM:SS AM" timestamps. Timestamps are on the 12-hour clock;
// hours are normalized before subtracting, and the date difference covers
// midnight rollover. Malformed input yields "Unknown"; a negative delta
// yields "Invalid" instead of an error.
func Duration(loginAt, logoutAt string) string {
	loginDate, loginHour, loginMinute, ok := splitTimestamp(loginAt)
	if !ok {
		return "Unknown"
	}
	logoutDate, logoutHour, logoutMinute, ok := splitTimestamp(logoutAt)
	if !ok {
		return "Unknown"
	}

	days := clock.DiffDays(loginDate, logoutDate)
	totalMinutes := days*24*60 + (logoutHour-loginHour)*60 + (logoutMinute - loginMinute)

	if totalMinutes < 0 {
		return "Invalid"
	}
	if totalMinutes < 60 {
		return strconv.Itoa(totalMinutes) + " mins"
	}

	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours < 24 {
		if minutes == 0 {
			return strconv.Itoa(hours) + " hrs"
		}
		return strconv.Itoa(hours) + " hrs " + strconv.Itoa(minutes) + " mins"
	}

	days = hours / 24
	hours = hours % 24
	switch {
	case hours == 0 && minutes == 0:
		return strconv.Itoa(days) + " days"
	case hours == 0:
		return strconv.Itoa(days) + " days " + strconv.Itoa(minutes) + " mins"
	case minutes == 0:
		return strconv.Itoa(days) + " days " + strconv.Itoa(hours) + " hrs"
	default:
		return strconv.Itoa(days) + " days " + strconv.Itoa(hours) + " hrs " + strconv.Itoa(minutes) + " mins"
	}
}

// splitTimestamp breaks a "D/M/YYYY HH:MM:SS AM" timestamp into its date
// and its hour/minute on the 24-hour clock.
func splitTimestamp(ts string) (date time.Time, hour, minute int, ok bool) {
	parts := strings.Split(ts, " ")
	if len(parts) < 2 {
		return time.Time{}, 0, 0, false
	}

	date, err := clock.ParseDate(parts[0])
	if err != nil {
		return time.Time{}, 0, 0, false
	}

	timeParts := strings.Split(parts[1], ":")
	if len(timeParts) < 3 {
		return time.Time{}, 0, 0, false
	}
	hour, err = strconv.Atoi(timeParts[0])
	if err != nil {
		return time.Time{}, 0, 0, false
	}
	minute, err = strconv.Atoi(timeParts[1])
	if err != nil {
		return time.Time{}, 0, 0, false
	}

	if len(parts) > 2 {
		switch parts[2] {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	}
	return date, hour, minute, true
}
