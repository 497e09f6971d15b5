package employee

import "errors"

var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUnauthorized         = errors.New("unauthorized to access this employee")
	ErrInvalidMonthKey      = errors.New("month key must be in YYYY-MM format")
	ErrInvalidBaseline      = errors.New("baseline dataset could not be read")
)
