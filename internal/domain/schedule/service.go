package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration  = errors.New("service duration must be a positive multiple of the grain")
	ErrInvalidBuffer    = errors.New("service buffer must be a non-negative multiple of the grain")
	ErrInvalidMaxCount  = errors.New("max simultaneous bookings must not be negative")
	ErrServiceNameEmpty = errors.New("service name must not be empty")
)

// Service is the bookable offering: how long a booking takes, the buffers
// around it, and how many may run at once. Duration and buffer changes only
// affect future slot generation; existing appointments keep their window.
type Service struct {
	id            uuid.UUID
	name          string
	duration      time.Duration
	bufferBefore  time.Duration
	bufferAfter   time.Duration
	maxConcurrent int // 0 means "use the business default"
}

func NewService(id uuid.UUID, name string, duration, bufferBefore, bufferAfter time.Duration, maxConcurrent int, grain time.Duration) (Service, error) {
	if name == "" {
		return Service{}, ErrServiceNameEmpty
	}
	if duration <= 0 || duration%grain != 0 {
		return Service{}, ErrInvalidDuration
	}
	if bufferBefore < 0 || bufferBefore%grain != 0 || bufferAfter < 0 || bufferAfter%grain != 0 {
		return Service{}, ErrInvalidBuffer
	}
	if maxConcurrent < 0 {
		return Service{}, ErrInvalidMaxCount
	}
	return Service{
		id:            id,
		name:          name,
		duration:      duration,
		bufferBefore:  bufferBefore,
		bufferAfter:   bufferAfter,
		maxConcurrent: maxConcurrent,
	}, nil
}

func (s Service) ID() uuid.UUID               { return s.id }
func (s Service) Name() string                { return s.name }
func (s Service) Duration() time.Duration     { return s.duration }
func (s Service) BufferBefore() time.Duration { return s.bufferBefore }
func (s Service) BufferAfter() time.Duration  { return s.bufferAfter }
func (s Service) MaxConcurrent() int          { return s.maxConcurrent }

// Expand widens a slot interval to the effective window that competes for
// capacity: [start - bufferBefore, end + bufferAfter).
func (s Service) Expand(iv Interval) Interval {
	return Interval{
		Start: iv.Start.Add(-s.bufferBefore),
		End:   iv.End.Add(s.bufferAfter),
	}
}
