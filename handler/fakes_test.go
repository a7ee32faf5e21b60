package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util/middleware"
)

// authAs injects an authenticated user the way the OAuth2 middleware does.
func authAs(uid int) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "user", middleware.AuthUserValue{
				ID:        uid,
				VisitorID: "visitor",
				Token:     "token",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type fakeUserRepo struct {
	users map[int]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	m := make(map[int]*domain.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByVisitorID(ctx context.Context, visitorID string) (*domain.User, error) {
	for _, u := range f.users {
		if u.VisitorID == visitorID {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, error) {
	if u, err := f.GetByVisitorID(ctx, user.VisitorID); err == nil {
		return u, nil
	}
	user.ID = len(f.users) + 1
	user.Plan = domain.PLAN_FREE
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeProjectRepo struct {
	projects  []*domain.Project
	ownerPlan map[int]string
	nextID    int
}

func newFakeProjectRepo(projects ...*domain.Project) *fakeProjectRepo {
	f := &fakeProjectRepo{ownerPlan: make(map[int]string), nextID: 100}
	f.projects = append(f.projects, projects...)
	return f
}

func (f *fakeProjectRepo) planFor(uid int) string {
	if plan, ok := f.ownerPlan[uid]; ok {
		return plan
	}
	return domain.PLAN_FREE
}

func (f *fakeProjectRepo) GetByIDForUser(ctx context.Context, id int, uid int) (*domain.Project, error) {
	for _, p := range f.projects {
		if p.ID == id && p.UserID == uid {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProjectRepo) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	for _, p := range f.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProjectRepo) GetBySlugWithOwner(ctx context.Context, slug string) (*domain.Project, string, error) {
	p, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	return p, f.planFor(p.UserID), nil
}

func (f *fakeProjectRepo) GetProjectsByUserID(ctx context.Context, uid int) ([]domain.Project, error) {
	ret := make([]domain.Project, 0)
	for _, p := range f.projects {
		if p.UserID == uid {
			ret = append(ret, *p)
		}
	}
	return ret, nil
}

func (f *fakeProjectRepo) CountByUserID(ctx context.Context, uid int) (int, error) {
	count := 0
	for _, p := range f.projects {
		if p.UserID == uid {
			count++
		}
	}
	return count, nil
}

func (f *fakeProjectRepo) Insert(ctx context.Context, project *domain.Project) error {
	f.nextID++
	project.ID = f.nextID
	f.projects = append(f.projects, project)
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, project *domain.Project) error {
	for i, p := range f.projects {
		if p.ID == project.ID && p.UserID == project.UserID {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTestimonialRepo struct {
	items  []*domain.Testimonial
	owners map[int]int    // pid -> owning uid
	slugs  map[int]string // pid -> slug
	nextID int
}

func newFakeTestimonialRepo() *fakeTestimonialRepo {
	return &fakeTestimonialRepo{
		owners: make(map[int]int),
		slugs:  make(map[int]string),
		nextID: 1000,
	}
}

func (f *fakeTestimonialRepo) addProject(pid int, uid int, slug string) {
	f.owners[pid] = uid
	f.slugs[pid] = slug
}

func (f *fakeTestimonialRepo) GetByIDForUser(ctx context.Context, id int, uid int) (*domain.Testimonial, string, error) {
	for _, t := range f.items {
		if t.ID == id && f.owners[t.ProjectID] == uid {
			return t, f.slugs[t.ProjectID], nil
		}
	}
	return nil, "", pgx.ErrNoRows
}

func (f *fakeTestimonialRepo) GetByProjectID(ctx context.Context, pid int) ([]domain.Testimonial, error) {
	ret := make([]domain.Testimonial, 0)
	for _, t := range f.items {
		if t.ProjectID == pid {
			ret = append(ret, *t)
		}
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].CreateTime.After(*ret[j].CreateTime)
	})
	return ret, nil
}

func (f *fakeTestimonialRepo) GetApprovedByProjectID(ctx context.Context, pid int) ([]domain.FeedItem, error) {
	ret := make([]domain.FeedItem, 0)
	for _, t := range f.items {
		if t.ProjectID != pid || t.Status != domain.TESTIMONIAL_STATUS_APPROVED {
			continue
		}
		ret = append(ret, domain.FeedItem{
			ID:         t.ID,
			Name:       t.Name,
			Company:    t.Company,
			Role:       t.Role,
			Content:    t.Content,
			Rating:     t.Rating,
			AvatarURL:  t.AvatarURL,
			IsFeatured: t.IsFeatured,
			CreateTime: t.CreateTime,
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].IsFeatured != ret[j].IsFeatured {
			return ret[i].IsFeatured
		}
		return ret[i].CreateTime.After(*ret[j].CreateTime)
	})
	return ret, nil
}

func (f *fakeTestimonialRepo) CountByProjectID(ctx context.Context, pid int) (int, error) {
	count := 0
	for _, t := range f.items {
		if t.ProjectID == pid {
			count++
		}
	}
	return count, nil
}

func (f *fakeTestimonialRepo) Insert(ctx context.Context, t *domain.Testimonial) error {
	f.nextID++
	t.ID = f.nextID
	t.Status = domain.TESTIMONIAL_STATUS_PENDING
	if t.CreateTime == nil {
		now := nowRef()
		t.CreateTime = &now
	}
	f.items = append(f.items, t)
	return nil
}

func (f *fakeTestimonialRepo) UpdateStatus(ctx context.Context, t *domain.Testimonial, status string) error {
	for _, item := range f.items {
		if item.ID == t.ID {
			item.Status = status
			t.Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTestimonialRepo) SetFeatured(ctx context.Context, t *domain.Testimonial, featured bool) error {
	for _, item := range f.items {
		if item.ID == t.ID {
			item.IsFeatured = featured
			t.IsFeatured = featured
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTestimonialRepo) Delete(ctx context.Context, t *domain.Testimonial) error {
	for i, item := range f.items {
		if item.ID == t.ID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func nowRef() time.Time {
	return time.Now()
}

type fakeFeedCache struct {
	data        map[string]string
	invalidated []string
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{data: make(map[string]string)}
}

func (f *fakeFeedCache) GetBySlug(ctx context.Context, slug string) (string, error) {
	if data, ok := f.data[slug]; ok {
		return data, nil
	}
	return "", redis.Nil
}

func (f *fakeFeedCache) Update(ctx context.Context, slug string, data string) error {
	f.data[slug] = data
	return nil
}

func (f *fakeFeedCache) Invalidate(ctx context.Context, slug string) error {
	delete(f.data, slug)
	f.invalidated = append(f.invalidated, slug)
	return nil
}
