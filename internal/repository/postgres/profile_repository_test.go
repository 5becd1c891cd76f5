package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"uid", "name", "program", "clubs", "interests", "accommodations",
	"photo_url", "onboarded", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*profileRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &profileRepository{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestGetByUID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + profileColumns + ` FROM users WHERE uid = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u1", "Ada", "Software Eng", "Robotics", "chess", "", "", true, now, now))

	profile, err := repo.GetByUID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.Name)
	assert.True(t, profile.Onboarded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE uid = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMergePassesNilForAbsentFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	name := "Ada"
	onboarded := true

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(uid\) DO UPDATE`).
		WithArgs("u1", "Ada", nil, nil, nil, nil, nil, true).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("u1", "Ada", "Physics", "", "", "", "", true, now, now))

	profile, err := repo.Merge(context.Background(), "u1", &domain.ProfilePatch{Name: &name, Onboarded: &onboarded})
	require.NoError(t, err)
	assert.Equal(t, "Physics", profile.Program)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCandidates(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE onboarded = TRUE AND uid <> \$1`).
		WithArgs("me", 80).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a", "A", "", "", "", "", "", true, now, now).
			AddRow("b", "B", "", "", "", "", "", true, now, now))

	profiles, err := repo.ListCandidates(context.Background(), "me", 80)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "a", profiles[0].UID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("migrations/001_users.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	applied, err := Migrate(context.Background(), sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAppliesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("migrations/001_users.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("migrations/001_users.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := Migrate(context.Background(), sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations/001_users.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
