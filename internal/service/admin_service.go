package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legal-companion/internal/db"
	"legal-companion/internal/domain"
	"legal-companion/internal/repository"
)

const (
	AdminDeleteConfirmation = "DELETE ADMIN"

	adminEmailDomain = "admin.local"
	defaultPageSize  = 50
	maxPageSize      = 200
	statsFanOut      = 8
	topTopicsLimit   = 10
	recentLimit      = 10
)

// AdminService agrupa la gestion de usuarios y los reportes del panel.
type AdminService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	searches  repository.SearchHistoryRepository
	pinger    db.Pinger
	startedAt time.Time
	now       func() time.Time
}

func NewAdminService(logger *zap.Logger, users repository.UserRepository, searches repository.SearchHistoryRepository, pinger db.Pinger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := func() time.Time { return time.Now().UTC() }
	return &AdminService{
		logger:    logger,
		users:     users,
		searches:  searches,
		pinger:    pinger,
		startedAt: now(),
		now:       now,
	}
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// CreateUser da de alta un usuario verificado sin pasar por OTP.
func (s *AdminService) CreateUser(ctx context.Context, actor domain.User, in CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceUnavailable
	}
	username := strings.TrimSpace(in.Username)
	emailAddr := normalizeEmail(in.Email)

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}
	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}

	user, err := s.create(ctx, username, emailAddr, in.Password, in.IsAdmin)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user created by admin",
		zap.String("username", user.Username),
		zap.Bool("is_admin", user.IsAdmin),
		zap.String("actor", actor.Username),
	)
	return user, nil
}

// CreateAdmin crea un administrador con email <username>@admin.local.
func (s *AdminService) CreateAdmin(ctx context.Context, actor domain.User, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceUnavailable
	}
	username = strings.TrimSpace(username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}

	user, err := s.create(ctx, username, username+"@"+adminEmailDomain, password, true)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("admin created", zap.String("username", user.Username), zap.String("actor", actor.Username))
	return user, nil
}

// DeleteUser borra un usuario. Borrar a otro admin exige la confirmacion literal.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.User, id, confirmation string) (domain.User, error) {
	target, err := s.lookup(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if target.ID == actor.ID {
		return domain.User{}, ErrSelfAction
	}
	if target.IsAdmin {
		if confirmation != AdminDeleteConfirmation {
			return domain.User{}, ErrAdminConfirmation
		}
		s.logger.Warn("deleting admin user with confirmation",
			zap.String("username", target.Username),
			zap.String("actor", actor.Username),
		)
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	s.logger.Info("user deleted", zap.String("username", target.Username), zap.String("actor", actor.Username))
	return target, nil
}

// ToggleAdmin invierte el flag de admin y devuelve el usuario actualizado.
func (s *AdminService) ToggleAdmin(ctx context.Context, actor domain.User, id string) (domain.User, error) {
	target, err := s.lookup(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if target.ID == actor.ID {
		return domain.User{}, ErrSelfAction
	}
	target.IsAdmin = !target.IsAdmin
	if err := s.users.SetAdmin(ctx, target.ID, target.IsAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	s.logger.Info("admin flag changed",
		zap.String("username", target.Username),
		zap.Bool("is_admin", target.IsAdmin),
		zap.String("actor", actor.Username),
	)
	return target, nil
}

type DeletedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type FailedDeletion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkDeleteResult struct {
	Deleted []DeletedUser
	Failed  []FailedDeletion
}

// BulkDelete borra usuarios comunes. El propio actor y los admins se saltean.
func (s *AdminService) BulkDelete(ctx context.Context, actor domain.User, ids []string) (BulkDeleteResult, error) {
	if s.users == nil {
		return BulkDeleteResult{}, ErrServiceUnavailable
	}
	if len(ids) == 0 {
		return BulkDeleteResult{}, inputErr("No user IDs provided")
	}
	res := BulkDeleteResult{Deleted: []DeletedUser{}, Failed: []FailedDeletion{}}
	for _, id := range ids {
		target, err := s.lookup(ctx, id)
		if err != nil {
			res.Failed = append(res.Failed, FailedDeletion{ID: id, Reason: bulkReason(err)})
			continue
		}
		switch {
		case target.ID == actor.ID:
			res.Failed = append(res.Failed, FailedDeletion{ID: id, Reason: "Cannot delete your own account"})
			continue
		case target.IsAdmin:
			res.Failed = append(res.Failed, FailedDeletion{ID: id, Reason: "Cannot delete other admin users"})
			continue
		}
		if err := s.users.Delete(ctx, target.ID); err != nil {
			res.Failed = append(res.Failed, FailedDeletion{ID: id, Reason: bulkReason(err)})
			continue
		}
		res.Deleted = append(res.Deleted, DeletedUser{ID: id, Username: target.Username})
	}
	if len(res.Deleted) > 0 {
		s.logger.Info("bulk delete", zap.Int("deleted", len(res.Deleted)), zap.String("actor", actor.Username))
	}
	return res, nil
}

func bulkReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidID):
		return "Invalid user ID format"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, repository.ErrNotFound):
		return "User not found"
	default:
		return err.Error()
	}
}

type ListUsersInput struct {
	Page   int64
	Limit  int64
	Search string
}

type UserPage struct {
	Users []domain.User
	Page  int64
	Limit int64
	Total int64
	Pages int64
}

// ListUsers pagina usuarios, opcionalmente filtrando por substring del username.
func (s *AdminService) ListUsers(ctx context.Context, in ListUsersInput) (UserPage, error) {
	if s.users == nil {
		return UserPage{}, ErrServiceUnavailable
	}
	page, limit := normalizePage(in.Page, in.Limit)
	q := repository.UserQuery{UsernameContains: strings.TrimSpace(in.Search)}

	total, err := s.users.Count(ctx, q)
	if err != nil {
		return UserPage{}, err
	}
	q.Skip = (page - 1) * limit
	q.Limit = limit
	users, err := s.users.List(ctx, q)
	if err != nil {
		return UserPage{}, err
	}
	pages := int64(1)
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return UserPage{Users: users, Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

func normalizePage(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return page, limit
}

func (s *AdminService) lookup(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, ErrServiceUnavailable
	}
	user, err := s.users.GetByID(ctx, strings.TrimSpace(id))
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, repository.ErrInvalidID):
		return domain.User{}, ErrInvalidID
	case errors.Is(err, repository.ErrNotFound):
		return domain.User{}, ErrUserNotFound
	default:
		return domain.User{}, err
	}
}

func (s *AdminService) create(ctx context.Context, username, emailAddr, password string, isAdmin bool) (domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		IsVerified:   true,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.User{}, ErrConflict
		}
		return domain.User{}, err
	}
	return user, nil
}

// DashboardStats es el snapshot que consume el panel de administracion.
type DashboardStats struct {
	TotalUsers      int64
	NewUsers30Days  int64
	NewUsers7Days   int64
	NewUsersToday   int64
	TotalAdmins     int64
	Searches30Days  int64
	Searches7Days   int64
	SearchesToday   int64
	TotalSearches   int64
	TopTopics       []domain.TopicCount
	RecentActivity  []domain.SearchEntry
	RecentUsers     []domain.User
	DatabaseHealthy bool
	GeneratedAt     time.Time
	Uptime          time.Duration
	// HourlyActivity tiene 24 entradas para hoy; DailyActivity los ultimos 7 dias.
	HourlyActivity []ActivityBucket
	DailyActivity  []ActivityBucket
}

type ActivityBucket struct {
	Label string
	Count int64
}

// Stats calcula los conteos en paralelo. Las ventanas "today" empiezan a la
// medianoche UTC.
func (s *AdminService) Stats(ctx context.Context) (DashboardStats, error) {
	if s.users == nil || s.searches == nil {
		return DashboardStats{}, ErrServiceUnavailable
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last30 := now.AddDate(0, 0, -30)
	last7 := now.AddDate(0, 0, -7)
	last1 := now.AddDate(0, 0, -1)

	st := DashboardStats{
		GeneratedAt:    now,
		Uptime:         now.Sub(s.startedAt),
		HourlyActivity: make([]ActivityBucket, 24),
		DailyActivity:  make([]ActivityBucket, 7),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsFanOut)

	countUsers := func(dst *int64, q repository.UserQuery) {
		g.Go(func() error {
			n, err := s.users.Count(gctx, q)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			*dst = n
			return nil
		})
	}
	countSearches := func(dst *int64, q repository.SearchQuery) {
		g.Go(func() error {
			n, err := s.searches.Count(gctx, q)
			if err != nil {
				return fmt.Errorf("count searches: %w", err)
			}
			*dst = n
			return nil
		})
	}

	countUsers(&st.TotalUsers, repository.UserQuery{})
	countUsers(&st.NewUsers30Days, repository.UserQuery{CreatedSince: last30})
	countUsers(&st.NewUsers7Days, repository.UserQuery{CreatedSince: last7})
	countUsers(&st.NewUsersToday, repository.UserQuery{CreatedSince: last1})
	countUsers(&st.TotalAdmins, repository.UserQuery{AdminsOnly: true})

	countSearches(&st.Searches30Days, repository.SearchQuery{Action: domain.ActionLegalResearch, From: last30})
	countSearches(&st.Searches7Days, repository.SearchQuery{Action: domain.ActionLegalResearch, From: last7})
	countSearches(&st.SearchesToday, repository.SearchQuery{Action: domain.ActionLegalResearch, From: midnight})
	countSearches(&st.TotalSearches, repository.SearchQuery{})

	for i := range st.HourlyActivity {
		start := midnight.Add(time.Duration(i) * time.Hour)
		st.HourlyActivity[i].Label = fmt.Sprintf("%02d:00", i)
		countSearches(&st.HourlyActivity[i].Count, repository.SearchQuery{From: start, To: start.Add(time.Hour)})
	}
	for i := range st.DailyActivity {
		start := midnight.AddDate(0, 0, -i)
		st.DailyActivity[i].Label = start.Format("2006-01-02")
		countSearches(&st.DailyActivity[i].Count, repository.SearchQuery{From: start, To: start.AddDate(0, 0, 1)})
	}

	g.Go(func() error {
		topics, err := s.searches.TopQueries(gctx, domain.ActionLegalResearch, last30, topTopicsLimit)
		if err != nil {
			return fmt.Errorf("top queries: %w", err)
		}
		st.TopTopics = topics
		return nil
	})
	g.Go(func() error {
		recent, err := s.searches.Recent(gctx, domain.ActionLegalResearch, recentLimit)
		if err != nil {
			return fmt.Errorf("recent searches: %w", err)
		}
		st.RecentActivity = recent
		return nil
	})
	g.Go(func() error {
		users, err := s.users.List(gctx, repository.UserQuery{Limit: recentLimit})
		if err != nil {
			return fmt.Errorf("recent users: %w", err)
		}
		st.RecentUsers = users
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	st.DatabaseHealthy = true
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("database ping failed", zap.Error(err))
			st.DatabaseHealthy = false
		}
	}
	return st, nil
}
