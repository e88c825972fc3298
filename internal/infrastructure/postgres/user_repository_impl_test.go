package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/domain/entity"
	"github.com/rosterhq/roster/internal/domain/repository"
)

const (
	johnID = "0b7aa661-a0fc-4b27-8b9f-47a4b55937a3"
	janeID = "9d3c6a42-11de-4f88-a3a7-6f2d5f3f9b21"
)

var fixedTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type UserRepositorySuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *UserRepository
}

func (s *UserRepositorySuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewUserRepository(mock)
}

func (s *UserRepositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func (s *UserRepositorySuite) TestCreateFillsGeneratedColumns() {
	s.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("John Doe", "john@example.com", "bcrypt-hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_active", "created_at", "updated_at"}).
			AddRow(johnID, true, fixedTime, fixedTime))

	u := &entity.User{Name: "John Doe", Email: "john@example.com", PasswordHash: "bcrypt-hash"}
	err := s.repo.Create(context.Background(), u)

	s.NoError(err)
	s.Equal(johnID, u.ID)
	s.True(u.IsActive)
	s.Equal(fixedTime, u.CreatedAt)
	s.Equal(fixedTime, u.UpdatedAt)
}

func (s *UserRepositorySuite) TestCreateDuplicateEmail() {
	s.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Jane", "john@example.com", "bcrypt-hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

	u := &entity.User{Name: "Jane", Email: "john@example.com", PasswordHash: "bcrypt-hash"}
	err := s.repo.Create(context.Background(), u)

	s.ErrorIs(err, domain.ErrEmailTaken)
}

func (s *UserRepositorySuite) TestGetByID() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, is_active, created_at, updated_at FROM users WHERE id = $1`)).
		WithArgs(johnID).
		WillReturnRows(userRows().AddRow(johnID, "John Doe", "john@example.com", true, fixedTime, fixedTime))

	u, err := s.repo.GetByID(context.Background(), johnID)

	s.NoError(err)
	s.Equal("John Doe", u.Name)
	s.Equal("john@example.com", u.Email)
	s.Empty(u.PasswordHash)
}

func (s *UserRepositorySuite) TestGetByIDNotFound() {
	s.mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(janeID).
		WillReturnError(pgx.ErrNoRows)

	u, err := s.repo.GetByID(context.Background(), janeID)

	s.Nil(u)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *UserRepositorySuite) TestGetByIDStoreFailure() {
	s.mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(johnID).
		WillReturnError(errors.New("connection refused"))

	_, err := s.repo.GetByID(context.Background(), johnID)

	s.Error(err)
	s.NotErrorIs(err, domain.ErrNotFound)
	s.Contains(err.Error(), "get user")
}

func (s *UserRepositorySuite) TestListWithoutSearch() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	s.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $1 OFFSET $2`)).
		WithArgs(10, 0).
		WillReturnRows(userRows().
			AddRow(janeID, "Jane Smith", "jane@example.com", true, fixedTime.Add(time.Hour), fixedTime.Add(time.Hour)).
			AddRow(johnID, "John Doe", "john@example.com", true, fixedTime, fixedTime))

	users, total, err := s.repo.List(context.Background(), repository.NewListQuery(1, 10, ""))

	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(users, 2)
	s.Equal("Jane Smith", users[0].Name)
	s.Equal("John Doe", users[1].Name)
}

func (s *UserRepositorySuite) TestListWithSearch() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE name ILIKE $1 OR email ILIKE $1`)).
		WithArgs("%john%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE $1 OR email ILIKE $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("%john%", 5, 0).
		WillReturnRows(userRows().AddRow(johnID, "John Doe", "john@example.com", true, fixedTime, fixedTime))

	users, total, err := s.repo.List(context.Background(), repository.NewListQuery(1, 5, "john"))

	s.NoError(err)
	s.Equal(int64(1), total)
	s.Len(users, 1)
	s.Equal(johnID, users[0].ID)
}

func (s *UserRepositorySuite) TestListEmptyPageIsNotNil() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	s.mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(userRows())

	users, total, err := s.repo.List(context.Background(), repository.NewListQuery(1, 10, ""))

	s.NoError(err)
	s.Zero(total)
	s.NotNil(users)
	s.Empty(users)
}

func (s *UserRepositorySuite) TestUpdateBuildsSetClauseFromPatch() {
	sql := `UPDATE users SET name = $1, email = $2, updated_at = now() WHERE id = $3 RETURNING id, name, email, is_active, created_at, updated_at`
	s.mock.ExpectQuery(regexp.QuoteMeta(sql)).
		WithArgs("Johnny", "johnny@example.com", johnID).
		WillReturnRows(userRows().AddRow(johnID, "Johnny", "johnny@example.com", true, fixedTime, fixedTime.Add(time.Minute)))

	name, email := "Johnny", "johnny@example.com"
	u, err := s.repo.Update(context.Background(), johnID, repository.UserPatch{Name: &name, Email: &email})

	s.NoError(err)
	s.Equal("Johnny", u.Name)
	s.Equal("johnny@example.com", u.Email)
}

func (s *UserRepositorySuite) TestUpdateEmptyPatchStillTouchesRow() {
	sql := `UPDATE users SET updated_at = now() WHERE id = $1 RETURNING id, name, email, is_active, created_at, updated_at`
	s.mock.ExpectQuery(regexp.QuoteMeta(sql)).
		WithArgs(johnID).
		WillReturnRows(userRows().AddRow(johnID, "John Doe", "john@example.com", true, fixedTime, fixedTime.Add(time.Minute)))

	u, err := s.repo.Update(context.Background(), johnID, repository.UserPatch{})

	s.NoError(err)
	s.Equal(fixedTime.Add(time.Minute), u.UpdatedAt)
}

func (s *UserRepositorySuite) TestUpdateNotFound() {
	s.mock.ExpectQuery(`UPDATE users SET`).
		WithArgs(janeID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.Update(context.Background(), janeID, repository.UserPatch{})

	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *UserRepositorySuite) TestUpdateDuplicateEmail() {
	email := "jane@example.com"
	s.mock.ExpectQuery(`UPDATE users SET`).
		WithArgs(email, johnID).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

	_, err := s.repo.Update(context.Background(), johnID, repository.UserPatch{Email: &email})

	s.ErrorIs(err, domain.ErrEmailTaken)
}

func (s *UserRepositorySuite) TestDeleteReturnsSnapshot() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1 RETURNING id, name, email, is_active, created_at, updated_at`)).
		WithArgs(johnID).
		WillReturnRows(userRows().AddRow(johnID, "John Doe", "john@example.com", true, fixedTime, fixedTime))

	u, err := s.repo.Delete(context.Background(), johnID)

	s.NoError(err)
	s.Equal(johnID, u.ID)
	s.Equal("john@example.com", u.Email)
}

func (s *UserRepositorySuite) TestDeleteNotFound() {
	s.mock.ExpectQuery(`DELETE FROM users WHERE id`).
		WithArgs(janeID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.repo.Delete(context.Background(), janeID)

	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *UserRepositorySuite) TestCountByStatus() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM users`)).
		WillReturnRows(pgxmock.NewRows([]string{"count", "active"}).AddRow(int64(4), int64(3)))

	total, active, err := s.repo.CountByStatus(context.Background())

	s.NoError(err)
	s.Equal(int64(4), total)
	s.Equal(int64(3), active)
}

func userRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "email", "is_active", "created_at", "updated_at"})
}

func TestUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"john", "%john%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.term), "term %q", tt.term)
	}
}
