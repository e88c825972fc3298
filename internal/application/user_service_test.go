package application_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/roster/internal/application"
	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/domain/entity"
	"github.com/rosterhq/roster/internal/domain/repository"
	"github.com/rosterhq/roster/internal/testutil"
	"github.com/rosterhq/roster/pkg/helpers"
	"github.com/rosterhq/roster/pkg/mailer"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newService(repo repository.UserRepository, pub application.Publisher, mailEnabled bool) *application.Service {
	return application.NewService(repo, nil, quietLogger(), nil, "", pub, mailEnabled)
}

func TestCreateStoresBcryptHash(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	svc := newService(repo, nil, false)

	u, err := svc.Create(context.Background(), application.CreateInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.True(t, u.IsActive)

	stored := repo.StoredHash(u.ID)
	assert.NotEqual(t, "secret1", stored)
	assert.True(t, helpers.CompareHashAndPassword(stored, "secret1"))
}

func TestCreatePublishesWelcomeEmail(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	pub := &testutil.RecordingPublisher{}
	svc := newService(repo, pub, true)

	_, err := svc.Create(context.Background(), application.CreateInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	require.Len(t, pub.Jobs, 1)
	job, ok := pub.Jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "john@example.com", job.To)
	assert.Equal(t, mailer.TemplateWelcome, job.Template)
	assert.Equal(t, "John Doe", job.Data["Name"])
}

func TestCreateSkipsWelcomeWhenMailDisabled(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	pub := &testutil.RecordingPublisher{}
	svc := newService(repo, pub, false)

	_, err := svc.Create(context.Background(), application.CreateInput{
		Name: "John", Email: "john@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Empty(t, pub.Jobs)
}

func TestCreateSurvivesBrokerFailure(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	pub := &testutil.RecordingPublisher{Err: assert.AnError}
	svc := newService(repo, pub, true)

	u, err := svc.Create(context.Background(), application.CreateInput{
		Name: "John", Email: "john@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestCreateWithoutPublisherDoesNotPanic(t *testing.T) {
	svc := newService(testutil.NewFakeUserRepository(), nil, true)
	_, err := svc.Create(context.Background(), application.CreateInput{
		Name: "John", Email: "john@example.com", Password: "secret1",
	})
	assert.NoError(t, err)
}

func TestUpdateRehashesOnlyWhenPasswordChanges(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	svc := newService(repo, nil, false)

	u, err := svc.Create(context.Background(), application.CreateInput{
		Name: "John", Email: "john@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	originalHash := repo.StoredHash(u.ID)

	name := "Johnny"
	_, err = svc.Update(context.Background(), u.ID, application.UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, originalHash, repo.StoredHash(u.ID))

	newPassword := "evenbettersecret"
	_, err = svc.Update(context.Background(), u.ID, application.UpdateInput{Password: &newPassword})
	require.NoError(t, err)

	rotated := repo.StoredHash(u.ID)
	assert.NotEqual(t, originalHash, rotated)
	assert.True(t, helpers.CompareHashAndPassword(rotated, newPassword))
	assert.False(t, helpers.CompareHashAndPassword(rotated, "secret1"))
}

func TestGetUnknownUser(t *testing.T) {
	svc := newService(testutil.NewFakeUserRepository(), nil, false)
	_, err := svc.Get(context.Background(), "2b11a9c3-4a7e-4f5b-b86b-4c1f1f9d2e10")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteReturnsSnapshotThenNotFound(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	svc := newService(repo, nil, false)

	u, err := svc.Create(context.Background(), application.CreateInput{
		Name: "John", Email: "john@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	snap, err := svc.Delete(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, snap.ID)
	assert.Equal(t, "john@example.com", snap.Email)

	_, err = svc.Delete(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsCountsAndRuntime(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	repo.Add(entity.User{Name: "A", Email: "a@example.com", IsActive: true})
	repo.Add(entity.User{Name: "B", Email: "b@example.com", IsActive: true})
	repo.Add(entity.User{Name: "C", Email: "c@example.com", IsActive: true})
	repo.Add(entity.User{Name: "D", Email: "d@example.com", IsActive: false})

	svc := newService(repo, nil, false)
	st, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), st.TotalUsers)
	assert.Equal(t, int64(3), st.ActiveUsers)
	assert.NotEmpty(t, st.Uptime)
	_, perr := time.ParseDuration(st.Uptime)
	assert.NoError(t, perr)
	assert.Greater(t, st.MemoryUsage.Sys, uint64(0))
	assert.WithinDuration(t, time.Now().UTC(), st.Timestamp, 5*time.Second)
}

func TestListPassesQueryThrough(t *testing.T) {
	repo := testutil.NewFakeUserRepository()
	for i := 0; i < 3; i++ {
		repo.Add(entity.User{Name: "User", Email: string(rune('a'+i)) + "@example.com", IsActive: true})
	}
	svc := newService(repo, nil, false)

	users, total, err := svc.List(context.Background(), repository.NewListQuery(1, 2, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}
