package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"legal-companion/internal/domain"
	"legal-companion/internal/repository"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]domain.User
	order   []string
	failGet error
	failUpd error
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: map[string]domain.User{}}
	for _, u := range users {
		if _, err := r.Create(context.Background(), u); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return domain.User{}, repository.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		r.seq++
		user.ID = fmt.Sprintf("%024x", r.seq)
	}
	r.byID[user.ID] = user
	r.order = append(r.order, user.ID)
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(id) != 24 {
		return domain.User{}, repository.ErrInvalidID
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) find(match func(domain.User) bool) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return domain.User{}, r.failGet
	}
	for _, u := range r.byID {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return r.find(func(u domain.User) bool { return email != "" && u.Email == email })
}

func (r *fakeUserRepo) UpdateEmail(_ context.Context, id, email string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpd != nil {
		return r.failUpd
	}
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email = email
	u.IsVerified = verified
	r.byID[id] = u
	return nil
}

func (r *fakeUserRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsAdmin = isAdmin
	r.byID[id] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeUserRepo) filter(q repository.UserQuery) []domain.User {
	out := make([]domain.User, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		u, ok := r.byID[r.order[i]]
		if !ok {
			continue
		}
		if q.UsernameContains != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(q.UsernameContains)) {
			continue
		}
		if !q.CreatedSince.IsZero() && u.CreatedAt.Before(q.CreatedSince) {
			continue
		}
		if q.AdminsOnly && !u.IsAdmin {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (r *fakeUserRepo) List(_ context.Context, q repository.UserQuery) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(q)
	if q.Skip >= int64(len(all)) {
		return []domain.User{}, nil
	}
	all = all[q.Skip:]
	if q.Limit > 0 && int64(len(all)) > q.Limit {
		all = all[:q.Limit]
	}
	return all, nil
}

func (r *fakeUserRepo) Count(_ context.Context, q repository.UserQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filter(q))), nil
}

type fakeOTPRepo struct {
	mu       sync.Mutex
	seq      int
	records  map[string]domain.OTP
	lastCode map[string]string
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{records: map[string]domain.OTP{}, lastCode: map[string]string{}}
}

func (r *fakeOTPRepo) Create(_ context.Context, otp domain.OTP) (domain.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	otp.ID = fmt.Sprintf("otp-%d", r.seq)
	r.records[otp.ID] = otp
	r.lastCode[otp.Email] = otp.Code
	return otp, nil
}

func (r *fakeOTPRepo) FindUnused(_ context.Context, email, code string) (domain.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.records {
		if o.Email == email && o.Code == code && !o.IsUsed {
			return o, nil
		}
	}
	return domain.OTP{}, repository.ErrNotFound
}

func (r *fakeOTPRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.records[id]
	if !ok || o.IsUsed {
		return repository.ErrNotFound
	}
	o.IsUsed = true
	r.records[id] = o
	return nil
}

func (r *fakeOTPRepo) CountCreatedSince(_ context.Context, email string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.records {
		if o.Email == email && !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeOTPRepo) HasPending(_ context.Context, email string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.records {
		if o.Email == email && !o.IsUsed && !o.ExpiredAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOTPRepo) DeleteUnused(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.records {
		if o.Email == email && !o.IsUsed {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, o := range r.records {
		if o.ExpiredAt(now) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeOTPRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeOTPRepo) latestCode(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCode[email]
}

func (r *fakeOTPRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeSearchRepo struct {
	mu      sync.Mutex
	entries []domain.SearchEntry
	err     error
}

func (r *fakeSearchRepo) Create(_ context.Context, entry domain.SearchEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	entry.ID = fmt.Sprintf("s-%d", len(r.entries)+1)
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeSearchRepo) match(q repository.SearchQuery, e domain.SearchEntry) bool {
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if !q.From.IsZero() && e.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !e.Timestamp.Before(q.To) {
		return false
	}
	return true
}

func (r *fakeSearchRepo) Count(_ context.Context, q repository.SearchQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, e := range r.entries {
		if r.match(q, e) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSearchRepo) TopQueries(_ context.Context, action string, since time.Time, limit int) ([]domain.TopicCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, e := range r.entries {
		if !r.match(repository.SearchQuery{Action: action, From: since}, e) {
			continue
		}
		topic := strings.ToLower(strings.TrimSpace(e.Query))
		if topic != "" {
			counts[topic]++
		}
	}
	out := make([]domain.TopicCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, domain.TopicCount{Topic: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSearchRepo) Recent(_ context.Context, action string, limit int) ([]domain.SearchEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SearchEntry, 0)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if action == "" || r.entries[i].Action == action {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

type mockSender struct {
	mu    sync.Mutex
	err   error
	sent  []string
	codes []string
}

func (m *mockSender) SendVerificationOTP(_ context.Context, to, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	m.codes = append(m.codes, code)
	return nil
}

// clock es un reloj manual para los tests.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errBoom = errors.New("boom")
