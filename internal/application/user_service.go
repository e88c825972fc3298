package application

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rosterhq/roster/internal/domain/entity"
	repo "github.com/rosterhq/roster/internal/domain/repository"
	"github.com/rosterhq/roster/pkg/helpers"
	"github.com/rosterhq/roster/pkg/mailer"
)

const userCacheTTL = 5 * time.Minute

// Publisher enqueues JSON jobs for background delivery.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Service orchestrates user CRUD against the repository. Redis, ES and the
// publisher are optional side channels: every use is nil-safe and never
// fails the request.
type Service struct {
	Repo         repo.UserRepository
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Pub          Publisher
	MailEnabled  bool

	startedAt time.Time
}

func NewService(r repo.UserRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, pub Publisher, mailEnabled bool) *Service {
	return &Service{
		Repo:         r,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Pub:          pub,
		MailEnabled:  mailEnabled,
		startedAt:    time.Now(),
	}
}

// CreateInput is a validated, normalized create payload.
type CreateInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateInput is a validated partial update; nil means "unchanged".
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Stats is the aggregate counters payload for GET /stats. Uptime and memory
// are sampled per request and never persisted.
type Stats struct {
	TotalUsers  int64       `json:"totalUsers"`
	ActiveUsers int64       `json:"activeUsers"`
	Uptime      string      `json:"uptime"`
	MemoryUsage MemoryUsage `json:"memoryUsage"`
	Timestamp   time.Time   `json:"timestamp"`
}

type MemoryUsage struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
}

func userCacheKey(id string) string {
	return "user:" + id
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	_ = s.indexUser(ctx, u)
	s.publishWelcomeEmail(ctx, u)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.User, error) {
	if u := s.cachedUser(ctx, id); u != nil {
		return u, nil
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheUser(ctx, u)
	return u, nil
}

func (s *Service) List(ctx context.Context, q repo.ListQuery) ([]entity.User, int64, error) {
	return s.Repo.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.User, error) {
	patch := repo.UserPatch{Name: in.Name, Email: in.Email}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	u, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.dropCachedUser(ctx, id)
	_ = s.indexUser(ctx, u)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.dropCachedUser(ctx, id)
	_ = s.deleteUserDoc(ctx, id)
	return u, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, active, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &Stats{
		TotalUsers:  total,
		ActiveUsers: active,
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		MemoryUsage: MemoryUsage{Alloc: m.Alloc, TotalAlloc: m.TotalAlloc, Sys: m.Sys, NumGC: m.NumGC},
		Timestamp:   time.Now().UTC(),
	}, nil
}

// cachedUser returns the cached projection for id, or nil on a miss or any
// Redis error (the store remains the source of truth).
func (s *Service) cachedUser(ctx context.Context, id string) *entity.User {
	if s.Redis == nil {
		return nil
	}
	var u entity.User
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, userCacheKey(id), &u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("user cache read failed")
		}
		return nil
	}
	if !ok {
		return nil
	}
	return &u
}

func (s *Service) cacheUser(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, userCacheKey(u.ID), u, userCacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("user cache write failed")
	}
}

func (s *Service) dropCachedUser(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, userCacheKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("user cache invalidation failed")
	}
}

// publishWelcomeEmail enqueues the welcome template for the new user.
// Fire-and-forget: a broker failure is logged, never surfaced.
func (s *Service) publishWelcomeEmail(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to publish welcome email")
	}
}

// indexUser mirrors the public projection into Elasticsearch so the search
// endpoint can serve it. Failures are logged and swallowed.
func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"isActive":  u.IsActive,
		"createdAt": u.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *Service) deleteUserDoc(ctx context.Context, id string) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return nil
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
