package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

func newTestApplicationsStore(t *testing.T) (*ApplicationsStore, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	s := NewApplicationsStore(db, nil)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func TestUpdateApplicationRecordsStatusChange(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "job_applications" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(applicationColumns).AddRow(applicationRow(7, 1, "applied")...))
	mock.ExpectQuery(`INSERT INTO "application_status_audits"`).
		WithArgs(int64(7), "applied", "phone_screen", sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`UPDATE "job_applications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "application_status_audits" WHERE application_id = `).
		WillReturnRows(sqlmock.NewRows(auditColumns).AddRow(11, 7, "applied", "phone_screen", fixedNow, 1))
	mock.ExpectCommit()

	status := model.StatusPhoneScreen
	app, audit, err := s.UpdateApplication(context.Background(), store.OwnerScope(1), 7,
		store.ApplicationPatch{CurrentStatus: &status}, 1)
	require.NoError(t, err)

	require.NotNil(t, audit)
	assert.Equal(t, model.StatusApplied, audit.PreviousStatus)
	assert.Equal(t, model.StatusPhoneScreen, audit.NewStatus)
	assert.Equal(t, int64(11), audit.ID)
	assert.Equal(t, model.StatusPhoneScreen, app.CurrentStatus)
	assert.Len(t, app.Audits, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationSameStatusWritesNoAudit(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "job_applications" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(applicationColumns).AddRow(applicationRow(7, 1, "offer")...))
	mock.ExpectExec(`UPDATE "job_applications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "application_status_audits"`).
		WillReturnRows(sqlmock.NewRows(auditColumns))
	mock.ExpectCommit()

	status := model.StatusOffer
	notes := "sent thank-you"
	app, audit, err := s.UpdateApplication(context.Background(), store.OwnerScope(1), 7,
		store.ApplicationPatch{CurrentStatus: &status, Notes: &notes}, 1)
	require.NoError(t, err)

	assert.Nil(t, audit)
	assert.Equal(t, "sent thank-you", app.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationOutOfScope(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "job_applications" WHERE id = .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(applicationColumns).AddRow(applicationRow(7, 2, "applied")...))
	mock.ExpectRollback()

	status := model.StatusRejected
	_, _, err := s.UpdateApplication(context.Background(), store.OwnerScope(1), 7,
		store.ApplicationPatch{CurrentStatus: &status}, 1)
	assert.ErrorIs(t, err, store.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplicationMissing(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "job_applications"`).
		WillReturnRows(sqlmock.NewRows(applicationColumns))
	mock.ExpectRollback()

	_, _, err := s.UpdateApplication(context.Background(), store.AllScope(), 99, store.ApplicationPatch{}, 1)
	assert.ErrorIs(t, err, store.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteApplicationNotFound(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "job_applications" WHERE id = .* AND user_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.DeleteApplication(context.Background(), store.OwnerScope(1), 7)
	assert.ErrorIs(t, err, store.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListApplicationsEmptySkipsPageQuery(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "job_applications" WHERE user_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	apps, total, err := s.ListApplications(context.Background(), store.OwnerScope(1),
		store.ApplicationFilter{}, store.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListApplicationsOrdersAndPages(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "job_applications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "job_applications" WHERE current_status IN .* ORDER BY applied_date DESC NULLS LAST,id ASC LIMIT 10 OFFSET 10`).
		WillReturnRows(sqlmock.NewRows(applicationColumns).
			AddRow(applicationRow(3, 1, "on_site")...).
			AddRow(applicationRow(4, 2, "remote")...))

	apps, total, err := s.ListApplications(context.Background(), store.AllScope(),
		store.ApplicationFilter{Statuses: model.InterviewStatuses},
		store.Page{Number: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, apps, 2)
	assert.Equal(t, model.StatusOnSite, apps[0].CurrentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCountsInPipelineOrder(t *testing.T) {
	s, mock := newTestApplicationsStore(t)

	mock.ExpectQuery(`SELECT current_status, count\(\*\) AS count FROM "job_applications" WHERE user_id = .* GROUP BY "current_status"`).
		WillReturnRows(sqlmock.NewRows([]string{"current_status", "count"}).
			AddRow("rejected", 2).
			AddRow("applied", 5))

	counts, err := s.StatusCounts(context.Background(), store.OwnerScope(1))
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, store.StatusCount{CurrentStatus: model.StatusApplied, Count: 5}, counts[0])
	assert.Equal(t, store.StatusCount{CurrentStatus: model.StatusRejected, Count: 2}, counts[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountNeedingFollowupUsesZone(t *testing.T) {
	db, mock := newMockDB(t)
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	s := NewApplicationsStore(db, loc)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "job_applications" WHERE .*AT TIME ZONE`).
		WithArgs(int64(1), "applied", "America/Los_Angeles", "2025-03-07").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.CountNeedingFollowup(context.Background(), store.OwnerScope(1), model.NewDate(2025, time.March, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountNeedingFollowupHostZoneIsUTC(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewApplicationsStore(db, time.Local)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "job_applications" WHERE .*AT TIME ZONE`).
		WithArgs(int64(1), "applied", "UTC", "2025-03-07").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := s.CountNeedingFollowup(context.Background(), store.OwnerScope(1), model.NewDate(2025, time.March, 7))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
