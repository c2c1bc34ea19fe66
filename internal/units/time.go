package units

import (
	"fmt"
	"math"
	"time"
)

// TimeLayout is the layout used for capture timestamps in the odometry readout.
const TimeLayout = "2006-01-02 15:04:05"

// IsTimezoneValid checks if the given timezone is valid by attempting to load it from the tz database
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// EpochTime converts fractional epoch seconds to a time.Time in UTC.
func EpochTime(epoch float64) time.Time {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// FormatEpoch renders epoch seconds in the given timezone using TimeLayout.
// An empty timezone means UTC.
func FormatEpoch(epoch float64, tz string) (string, error) {
	t := EpochTime(epoch)
	if tz == "" || tz == "UTC" {
		return t.Format(TimeLayout), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return t.Format(TimeLayout), fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return t.In(loc).Format(TimeLayout), nil
}
