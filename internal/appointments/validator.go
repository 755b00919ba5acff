package appointments

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Clinic operating window: bookings are accepted when the hour component of
// the preferred time falls inside [openingHour, closingHour]. The minute is
// deliberately ignored, so 21:59 is still accepted.
const (
	openingHour = 9
	closingHour = 21
)

const (
	maxFullNameLen = 100
	maxPhoneLen    = 20
	maxServiceLen  = 200
	maxMessageLen  = 1000
)

var (
	timePattern  = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// ValidateBooking checks a raw booking request against the clinic's business
// rules and returns either a normalized Appointment (ID, number and createdAt
// still unset) or a ValidationError listing every violated rule. Rules are all
// collected rather than short-circuited, except where a rule depends on an
// earlier field parsing successfully.
func ValidateBooking(req *BookingRequest, now time.Time) (*Appointment, *ValidationError) {
	var violations []string

	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	rawDate := strings.TrimSpace(req.PreferredDate)
	rawTime := strings.TrimSpace(req.PreferredTime)
	service := strings.TrimSpace(req.Service)
	message := strings.TrimSpace(req.Message)

	// Caps count characters, not bytes, so multibyte names are not penalized.
	if fullName == "" {
		violations = append(violations, "full name is required")
	} else if utf8.RuneCountInString(fullName) > maxFullNameLen {
		violations = append(violations, "full name cannot exceed 100 characters")
	}

	if email == "" {
		violations = append(violations, "email is required")
	} else if !emailPattern.MatchString(email) {
		violations = append(violations, "please provide a valid email address")
	}

	if phone == "" {
		violations = append(violations, "phone number is required")
	} else if utf8.RuneCountInString(phone) > maxPhoneLen {
		violations = append(violations, "phone number cannot exceed 20 characters")
	}

	if service == "" {
		violations = append(violations, "service is required")
	} else if utf8.RuneCountInString(service) > maxServiceLen {
		violations = append(violations, "service name cannot exceed 200 characters")
	}

	if utf8.RuneCountInString(message) > maxMessageLen {
		violations = append(violations, "message cannot exceed 1000 characters")
	}

	var (
		date      time.Time
		dateValid bool
	)
	if rawDate == "" {
		violations = append(violations, "preferred date is required")
	} else {
		var err error
		date, err = time.ParseInLocation(DateLayout, rawDate, now.Location())
		if err != nil {
			violations = append(violations, "please provide a valid date in YYYY-MM-DD format")
		} else {
			dateValid = true
			today := truncateToDay(now)
			if date.Before(today) {
				violations = append(violations, "preferred date cannot be in the past")
			}
		}
	}

	timeValid := false
	if rawTime == "" {
		violations = append(violations, "preferred time is required")
	} else if !timePattern.MatchString(rawTime) {
		violations = append(violations, "invalid time format, please use HH:MM (24-hour)")
	} else {
		timeValid = true
	}

	if timeValid {
		hour, minute := splitTime(rawTime)

		if dateValid && date.Equal(truncateToDay(now)) {
			selected := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
			if selected.Before(now) {
				violations = append(violations, "selected time cannot be in the past")
			}
		}

		if hour < openingHour || hour > closingHour {
			violations = append(violations, "appointments are only available between 9:00 AM and 9:00 PM")
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	return &Appointment{
		FullName:      fullName,
		Email:         email,
		Phone:         phone,
		PreferredDate: date,
		PreferredTime: normalizeClock(rawTime),
		Service:       service,
		Message:       message,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func splitTime(value string) (hour, minute int) {
	parts := strings.SplitN(value, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	return hour, minute
}

// normalizeClock zero-pads single-digit hours so stored times are uniform.
func normalizeClock(value string) string {
	hour, minute := splitTime(value)
	var b strings.Builder
	if hour < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(hour))
	b.WriteByte(':')
	if minute < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(minute))
	return b.String()
}
