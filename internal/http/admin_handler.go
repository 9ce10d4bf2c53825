package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"legal-companion/internal/domain"
	"legal-companion/internal/service"
)

// AdminManager es la superficie de servicio que usa el panel de administracion.
type AdminManager interface {
	Stats(ctx context.Context) (service.DashboardStats, error)
	ListUsers(ctx context.Context, in service.ListUsersInput) (service.UserPage, error)
	CreateUser(ctx context.Context, actor domain.User, in service.CreateUserInput) (domain.User, error)
	CreateAdmin(ctx context.Context, actor domain.User, username, password string) (domain.User, error)
	DeleteUser(ctx context.Context, actor domain.User, id, confirmation string) (domain.User, error)
	ToggleAdmin(ctx context.Context, actor domain.User, id string) (domain.User, error)
	BulkDelete(ctx context.Context, actor domain.User, ids []string) (service.BulkDeleteResult, error)
}

type AdminHandler struct {
	logger *zap.Logger
	admin  AdminManager
}

func NewAdminHandler(logger *zap.Logger, admin AdminManager) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{logger: logger, admin: admin}
}

var userTypeCaser = cases.Title(language.English)

type userSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	IsAdmin   bool      `json:"is_admin"`
}

func summarize(users []domain.User) []userSummary {
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, IsAdmin: u.IsAdmin})
	}
	return out
}

func bucketMap(buckets []service.ActivityBucket) map[string]int64 {
	out := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		out[b.Label] = b.Count
	}
	return out
}

// Stats maneja GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err, "Error retrieving admin statistics")
		return
	}

	topics := st.TopTopics
	if topics == nil {
		topics = []domain.TopicCount{}
	}
	activity := st.RecentActivity
	if activity == nil {
		activity = []domain.SearchEntry{}
	}
	status := "operational"
	if !st.DatabaseHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":            st.TotalUsers,
		"new_users_30_days":      st.NewUsers30Days,
		"new_users_7_days":       st.NewUsers7Days,
		"new_users_today":        st.NewUsersToday,
		"total_admins":           st.TotalAdmins,
		"total_searches_30_days": st.Searches30Days,
		"total_searches_7_days":  st.Searches7Days,
		"total_searches_today":   st.SearchesToday,
		"total_searches":         st.TotalSearches,
		"top_searched_topics":    topics,
		"recent_activity":        activity,
		"recent_users":           summarize(st.RecentUsers),
		"system_health": gin.H{
			"status":             status,
			"last_updated":       st.GeneratedAt,
			"database_connected": st.DatabaseHealthy,
		},
		"hourly_activity": bucketMap(st.HourlyActivity),
		"daily_activity":  bucketMap(st.DailyActivity),
		"performance_metrics": gin.H{
			"uptime_seconds":  int64(st.Uptime.Seconds()),
			"active_sessions": st.SearchesToday,
		},
	})
}

// ListUsers maneja GET /admin/users?page=&limit=&search=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q struct {
		Page   int64  `form:"page"`
		Limit  int64  `form:"limit"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	page, err := h.admin.ListUsers(c.Request.Context(), service.ListUsersInput{Page: q.Page, Limit: q.Limit, Search: q.Search})
	if err != nil {
		writeServiceError(c, h.logger, err, "Error retrieving users list")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": summarize(page.Users),
		"pagination": gin.H{
			"page":  page.Page,
			"limit": page.Limit,
			"total": page.Total,
			"pages": page.Pages,
		},
	})
}

// CreateUser maneja POST /admin/users/create (JSON).
func (h *AdminHandler) CreateUser(c *gin.Context) {
	actor, _ := CurrentUser(c)
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	user, err := h.admin.CreateUser(c.Request.Context(), actor, service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(c, h.logger, err, "Error creating user")
		return
	}
	userType := "regular user"
	if user.IsAdmin {
		userType = "admin user"
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"is_admin":    user.IsAdmin,
		"is_verified": user.IsVerified,
		"created_at":  user.CreatedAt,
		"message":     fmt.Sprintf("%s '%s' created successfully", userTypeCaser.String(userType), user.Username),
	})
}

// CreateAdmin maneja POST /admin/users/create-admin (form).
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	actor, _ := CurrentUser(c)
	var form struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		writeValidationError(c, h.logger, err)
		return
	}
	user, err := h.admin.CreateAdmin(c.Request.Context(), actor, form.Username, form.Password)
	if err != nil {
		writeServiceError(c, h.logger, err, "Error creating admin user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"is_admin":   true,
		"created_at": user.CreatedAt,
		"message":    fmt.Sprintf("Admin user '%s' created successfully", user.Username),
	})
}

// DeleteUser maneja DELETE /admin/users/:id?admin_confirmation=.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, _ := CurrentUser(c)
	id := c.Param("id")
	target, err := h.admin.DeleteUser(c.Request.Context(), actor, id, c.Query("admin_confirmation"))
	if err != nil {
		if errors.Is(err, service.ErrSelfAction) {
			writeDetail(c, http.StatusForbidden, "Cannot delete your own account")
			return
		}
		writeServiceError(c, h.logger, err, "Error deleting user")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("User '%s' deleted successfully", target.Username),
		"deleted_user_id": id,
	})
}

// ToggleAdmin maneja PUT /admin/users/:id/toggle-admin.
func (h *AdminHandler) ToggleAdmin(c *gin.Context) {
	actor, _ := CurrentUser(c)
	id := c.Param("id")
	user, err := h.admin.ToggleAdmin(c.Request.Context(), actor, id)
	if err != nil {
		if errors.Is(err, service.ErrSelfAction) {
			writeDetail(c, http.StatusForbidden, "Cannot modify your own admin status")
			return
		}
		writeServiceError(c, h.logger, err, "Error toggling admin status")
		return
	}
	status := "regular user"
	if user.IsAdmin {
		status = "admin"
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"message":  fmt.Sprintf("User '%s' is now a %s", user.Username, status),
	})
}

// BulkDelete maneja POST /admin/users/bulk-delete con user_ids repetido.
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	actor, _ := CurrentUser(c)
	ids := c.PostFormArray("user_ids")
	res, err := h.admin.BulkDelete(c.Request.Context(), actor, ids)
	if err != nil {
		writeServiceError(c, h.logger, err, "Error in bulk delete operation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deleted_users":    res.Deleted,
		"failed_deletions": res.Failed,
		"total_deleted":    len(res.Deleted),
		"total_failed":     len(res.Failed),
		"message":          fmt.Sprintf("Bulk delete completed. %d users deleted, %d failed.", len(res.Deleted), len(res.Failed)),
	})
}
