package batch

import (
	"fmt"
	"time"

	"github.com/cyra/logaudit/internal/apperrors"
)

// DayLayout is the date format of CLI arguments and archive file names.
const DayLayout = "2006-01-02"

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From  time.Time
	Until time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates. until may be empty, meaning the
// same day as from.
func ParseDateRange(from, until string) (DateRange, error) {
	start, err := time.Parse(DayLayout, from)
	if err != nil {
		return DateRange{}, apperrors.NewInvalidArgument(fmt.Sprintf("Invalid 'from' format: %q, expected YYYY-MM-DD", from))
	}

	end := start
	if until != "" {
		end, err = time.Parse(DayLayout, until)
		if err != nil {
			return DateRange{}, apperrors.NewInvalidArgument(fmt.Sprintf("Invalid 'until' format: %q, expected YYYY-MM-DD", until))
		}
	}

	if start.After(end) {
		return DateRange{}, apperrors.NewInvalidArgument("'from' cannot be after 'until'")
	}

	return DateRange{From: start, Until: end}, nil
}

// Days lists every day of the range formatted as YYYY-MM-DD, in order.
func (r DateRange) Days() []string {
	var days []string
	for d := r.From; !d.After(r.Until); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days
}

func (r DateRange) String() string {
	return r.From.Format(DayLayout) + " until " + r.Until.Format(DayLayout)
}
