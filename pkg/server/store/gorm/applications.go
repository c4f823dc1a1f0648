package gorm

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// Ensure ApplicationsStore implements store.ApplicationsStore
var _ store.ApplicationsStore = (*ApplicationsStore)(nil)

// ApplicationsStore implements store.ApplicationsStore using GORM
type ApplicationsStore struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewApplicationsStore creates a new ApplicationsStore. loc is the zone
// in which contact timestamps are turned into calendar days. Postgres
// knows no zone named "Local", so time.Local is treated as UTC.
func NewApplicationsStore(db *gorm.DB, loc *time.Location) *ApplicationsStore {
	if loc == nil || loc == time.Local {
		loc = time.UTC
	}
	return &ApplicationsStore{db: db, loc: loc, now: time.Now}
}

// scoped starts a query over the applications visible in scope.
func (s *ApplicationsStore) scoped(ctx context.Context, scope store.Scope) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.JobApplication{})
	if !scope.All {
		q = q.Where("user_id = ?", scope.UserID)
	}
	return q
}

func (s *ApplicationsStore) applyFilter(q *gorm.DB, f store.ApplicationFilter) *gorm.DB {
	switch len(f.Statuses) {
	case 0:
	case 1:
		q = q.Where("current_status = ?", f.Statuses[0].String())
	default:
		q = q.Where("current_status IN ?", statusNames(f.Statuses))
	}
	if f.StaleCutoff != nil {
		q = s.whereStale(q, *f.StaleCutoff)
	}
	if f.AppliedFrom != nil {
		q = q.Where("applied_date >= ?", f.AppliedFrom.String())
	}
	if f.AppliedBefore != nil {
		q = q.Where("applied_date < ?", f.AppliedBefore.String())
	}
	return q
}

// whereStale keeps applied applications whose last contact, or applied
// date when never contacted, is on or before cutoff.
func (s *ApplicationsStore) whereStale(q *gorm.DB, cutoff model.Date) *gorm.DB {
	return q.Where(
		"current_status = ? AND applied_date IS NOT NULL AND COALESCE((last_contacted_at AT TIME ZONE ?)::date, applied_date) <= ?",
		model.StatusApplied.String(), s.loc.String(), cutoff.String(),
	)
}

func statusNames(statuses []model.PipelineStatus) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = st.String()
	}
	return names
}

// ListApplications returns a page of applications and the total match count.
func (s *ApplicationsStore) ListApplications(ctx context.Context, scope store.Scope, filter store.ApplicationFilter, page store.Page) ([]model.JobApplication, int64, error) {
	q := s.applyFilter(s.scoped(ctx, scope), filter).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	apps := []model.JobApplication{}
	if total == 0 {
		return apps, 0, nil
	}

	err := q.Order("applied_date DESC NULLS LAST").Order("id ASC").
		Limit(page.Size).Offset(page.Offset()).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func orderAudits(db *gorm.DB) *gorm.DB {
	return db.Order("changed_at ASC").Order("id ASC")
}

// FetchApplication returns an application with its audits.
func (s *ApplicationsStore) FetchApplication(ctx context.Context, scope store.Scope, id int64) (*model.JobApplication, error) {
	var app model.JobApplication
	err := s.scoped(ctx, scope).Preload("Audits", orderAudits).Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

// CreateApplication inserts app.
func (s *ApplicationsStore) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	now := s.now()
	app.ID = 0
	app.CreatedAt = now
	app.UpdatedAt = now
	app.Audits = nil
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
}

// UpdateApplication reads, compares and writes under a row lock. An audit
// row is inserted in the same transaction when the status changes.
func (s *ApplicationsStore) UpdateApplication(ctx context.Context, scope store.Scope, id int64, patch store.ApplicationPatch, actorID int64) (*model.JobApplication, *model.ApplicationStatusAudit, error) {
	var (
		app   model.JobApplication
		audit *model.ApplicationStatusAudit
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&app).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrApplicationNotFound
			}
			return err
		}
		if !scope.Allows(app.UserID) {
			return store.ErrApplicationNotFound
		}

		now := s.now()
		previous := app.CurrentStatus
		patch.Apply(&app)
		app.UpdatedAt = now

		if app.CurrentStatus != previous {
			audit = &model.ApplicationStatusAudit{
				ApplicationID:  app.ID,
				PreviousStatus: previous,
				NewStatus:      app.CurrentStatus,
				ChangedAt:      now,
				ChangedBy:      &actorID,
			}
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&app).Error; err != nil {
			return err
		}

		return orderAudits(tx).Where("application_id = ?", app.ID).Find(&app.Audits).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &app, audit, nil
}

// DeleteApplication removes an application; audits go with it by cascade.
func (s *ApplicationsStore) DeleteApplication(ctx context.Context, scope store.Scope, id int64) error {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if !scope.All {
		q = q.Where("user_id = ?", scope.UserID)
	}
	tx := q.Delete(&model.JobApplication{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrApplicationNotFound
	}
	return nil
}

// MarkFollowupSent records that the applicant reached out at at.
func (s *ApplicationsStore) MarkFollowupSent(ctx context.Context, scope store.Scope, id int64, at time.Time) (*model.JobApplication, error) {
	tx := s.scoped(ctx, scope).Where("id = ?", id).Updates(map[string]interface{}{
		"last_contacted_at": at,
		"updated_at":        at,
	})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrApplicationNotFound
	}
	return s.FetchApplication(ctx, scope, id)
}

// ListAudits returns the status history of an application.
func (s *ApplicationsStore) ListAudits(ctx context.Context, scope store.Scope, id int64) ([]model.ApplicationStatusAudit, error) {
	app, err := s.FetchApplication(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if app.Audits == nil {
		return []model.ApplicationStatusAudit{}, nil
	}
	return app.Audits, nil
}

// StatusCounts groups the applications in scope by status, in pipeline order.
func (s *ApplicationsStore) StatusCounts(ctx context.Context, scope store.Scope) ([]store.StatusCount, error) {
	counts := []store.StatusCount{}
	err := s.scoped(ctx, scope).
		Select("current_status, count(*) AS count").
		Group("current_status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].CurrentStatus < counts[j].CurrentStatus
	})
	return counts, nil
}

// CountNeedingFollowup counts applications in scope that are stale at cutoff.
func (s *ApplicationsStore) CountNeedingFollowup(ctx context.Context, scope store.Scope, cutoff model.Date) (int64, error) {
	var n int64
	err := s.whereStale(s.scoped(ctx, scope), cutoff).Count(&n).Error
	return n, err
}
