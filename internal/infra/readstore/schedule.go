package readstore

import (
	"context"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScheduleReadStore materializes the booking configuration of a business:
// policy knobs, weekly hours and dated exceptions, resolved into a domain
// schedule in one shot.
type ScheduleReadStore struct {
	db db.DBTX
}

func NewScheduleReadStore(dbtx db.DBTX) *ScheduleReadStore {
	return &ScheduleReadStore{db: dbtx}
}

func (s *ScheduleReadStore) ScheduleByBusiness(ctx context.Context, businessID uuid.UUID) (*schedule.BusinessSchedule, error) {
	const businessQuery = `
		SELECT timezone, grain_minutes, min_lead_time_minutes, max_advance_minutes, max_concurrent
		  FROM businesses
		 WHERE id = $1`

	var (
		timezone                          string
		grainMin, leadMin, advMin, maxCon int32
	)
	err := s.db.QueryRow(ctx, businessQuery, businessID).Scan(&timezone, &grainMin, &leadMin, &advMin, &maxCon)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("business not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load business", err)
	}

	rules, err := s.loadRules(ctx, businessID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.loadExceptions(ctx, businessID)
	if err != nil {
		return nil, err
	}

	sched, err := schedule.NewBusinessSchedule(schedule.ScheduleParams{
		BusinessID:    businessID,
		Timezone:      timezone,
		Grain:         time.Duration(grainMin) * time.Minute,
		MinLeadTime:   time.Duration(leadMin) * time.Minute,
		MaxAdvance:    time.Duration(advMin) * time.Minute,
		MaxConcurrent: int(maxCon),
		Rules:         rules,
		Exceptions:    exceptions,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("stored schedule is invalid", err)
	}
	return sched, nil
}

func (s *ScheduleReadStore) loadRules(ctx context.Context, businessID uuid.UUID) ([]schedule.Rule, error) {
	const query = `
		SELECT weekday, open_minutes, close_minutes
		  FROM availability_rules
		 WHERE business_id = $1
		 ORDER BY weekday, open_minutes`

	rows, err := s.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load availability rules", err)
	}
	defer rows.Close()

	var rules []schedule.Rule
	for rows.Next() {
		var weekday int16
		var openMin, closeMin int32
		if err := rows.Scan(&weekday, &openMin, &closeMin); err != nil {
			return nil, infra.WrapRepoErr("failed to scan availability rule", err)
		}
		rules = append(rules, schedule.Rule{
			Weekday: time.Weekday(weekday),
			Window: schedule.Window{
				Open:  schedule.TimeOfDay(openMin),
				Close: schedule.TimeOfDay(closeMin),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read availability rules", err)
	}
	return rules, nil
}

func (s *ScheduleReadStore) loadExceptions(ctx context.Context, businessID uuid.UUID) ([]schedule.Exception, error) {
	const query = `
		SELECT date, closed, open_minutes, close_minutes
		  FROM availability_exceptions
		 WHERE business_id = $1`

	rows, err := s.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load availability exceptions", err)
	}
	defer rows.Close()

	var exceptions []schedule.Exception
	for rows.Next() {
		var (
			date              time.Time
			closed            bool
			openMin, closeMin *int32
		)
		if err := rows.Scan(&date, &closed, &openMin, &closeMin); err != nil {
			return nil, infra.WrapRepoErr("failed to scan availability exception", err)
		}
		ex := schedule.Exception{Date: date, Closed: closed}
		if !closed && openMin != nil && closeMin != nil {
			ex.Window = schedule.Window{
				Open:  schedule.TimeOfDay(*openMin),
				Close: schedule.TimeOfDay(*closeMin),
			}
		}
		exceptions = append(exceptions, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read availability exceptions", err)
	}
	return exceptions, nil
}

func (s *ScheduleReadStore) ServiceByID(ctx context.Context, businessID, serviceID uuid.UUID) (schedule.Service, error) {
	const query = `
		SELECT s.id, s.name, s.duration_minutes, s.buffer_before_minutes,
		       s.buffer_after_minutes, s.max_concurrent, b.grain_minutes
		  FROM services s
		  JOIN businesses b ON b.id = s.business_id
		 WHERE s.id = $1 AND s.business_id = $2 AND s.active`

	var (
		id                    uuid.UUID
		name                  string
		durMin, before, after int32
		maxCon, grainMin      int32
	)
	err := s.db.QueryRow(ctx, query, serviceID, businessID).Scan(&id, &name, &durMin, &before, &after, &maxCon, &grainMin)
	if err != nil {
		if err == pgx.ErrNoRows {
			return schedule.Service{}, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return schedule.Service{}, infra.WrapRepoErr("failed to load service", err)
	}

	svc, err := schedule.NewService(
		id,
		name,
		time.Duration(durMin)*time.Minute,
		time.Duration(before)*time.Minute,
		time.Duration(after)*time.Minute,
		int(maxCon),
		time.Duration(grainMin)*time.Minute,
	)
	if err != nil {
		return schedule.Service{}, infra.WrapRepoErr("stored service is invalid", err)
	}
	return svc, nil
}
