package planning

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// EndOfDay is the midnight sentinel offered as the last end time.
	EndOfDay = "00:00"
	// MinutesPerDay is the encoded value of EndOfDay when used as an end time.
	MinutesPerDay = 24 * 60

	firstOptionMinute = 6 * 60
	lastOptionMinute  = 23*60 + 45
	optionStep        = 15
)

// GenerateTimeOptions returns 06:00 through 23:45 in 15 minute steps followed by
// the 00:00 end-of-day sentinel. Start and end selectors share this list.
func GenerateTimeOptions() []string {
	options := make([]string, 0, (lastOptionMinute-firstOptionMinute)/optionStep+2)
	for m := firstOptionMinute; m <= lastOptionMinute; m += optionStep {
		options = append(options, formatClock(m))
	}
	return append(options, EndOfDay)
}

// Normalize truncates a seconds component, returning HH:mm. Values that do not look
// like a clock are returned trimmed and otherwise untouched.
func Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 5 && trimmed[2] == ':' {
		return strings.TrimSpace(trimmed[:5])
	}
	return trimmed
}

// ValidateInterval fails with ErrInvalidInterval when either bound is empty or
// start is not strictly before end. An end of 00:00 means end of day.
func ValidateInterval(start, end string) error {
	start, end = Normalize(start), Normalize(end)
	if start == "" {
		return fmt.Errorf("%w: start time is required", ErrInvalidInterval)
	}
	if end == "" {
		return fmt.Errorf("%w: end time is required", ErrInvalidInterval)
	}
	startMin, ok := StartMinutes(start)
	if !ok {
		return fmt.Errorf("%w: malformed start time %q", ErrInvalidInterval, start)
	}
	endMin, ok := EndMinutes(end)
	if !ok {
		return fmt.Errorf("%w: malformed end time %q", ErrInvalidInterval, end)
	}
	if startMin >= endMin {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInterval)
	}
	return nil
}

// EndTimeOptions returns the options strictly after start. With no usable start
// every option is offered.
func EndTimeOptions(start string) []string {
	options := GenerateTimeOptions()
	startMin, ok := StartMinutes(start)
	if !ok {
		return options
	}
	filtered := options[:0]
	for _, option := range options {
		if endMin, _ := EndMinutes(option); endMin > startMin {
			filtered = append(filtered, option)
		}
	}
	return filtered
}

// EndStillValid reports whether end remains selectable after start changed.
func EndStillValid(start, end string) bool {
	if Normalize(end) == "" || Normalize(start) == "" {
		return true
	}
	return ValidateInterval(start, end) == nil
}

// StartMinutes parses HH:mm into minutes after midnight.
func StartMinutes(value string) (int, bool) {
	value = Normalize(value)
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}
	hours, err := strconv.Atoi(value[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(value[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// EndMinutes is StartMinutes with 00:00 mapped to MinutesPerDay.
func EndMinutes(value string) (int, bool) {
	minutes, ok := StartMinutes(value)
	if !ok {
		return 0, false
	}
	if minutes == 0 {
		return MinutesPerDay, true
	}
	return minutes, true
}

func formatClock(minutes int) string {
	minutes %= MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
