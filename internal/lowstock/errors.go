package lowstock

import "errors"

var (
	ErrEmptyInput    = errors.New("no low-stock items to alert on")
	ErrSendFailure   = errors.New("send low-stock alert")
	ErrTimeout       = errors.New("low-stock alert send timed out")
	ErrNotConfigured = errors.New("email delivery is not configured")
)
