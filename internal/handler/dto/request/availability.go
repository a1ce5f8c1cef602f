package request

import "time"

// SlotsQuery selects the availability window. Bounds are RFC3339 instants;
// the window is half-open.
type SlotsQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}
