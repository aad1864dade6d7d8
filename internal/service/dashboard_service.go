package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/madrasati-app/madrasati-api/internal/models"
	appErrors "github.com/madrasati-app/madrasati-api/pkg/errors"
)

const adminStatsCacheKey = "dashboard:admin_stats"

type dashboardUserRepository interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
	CountPending(ctx context.Context) (int, error)
}

type dashboardStudentRepository interface {
	CountAll(ctx context.Context) (int, error)
}

type dashboardLinkRepository interface {
	ListChildren(ctx context.Context, parentID string) ([]models.LinkedChild, error)
	TeacherGradeLevels(ctx context.Context, teacherID string) ([]string, error)
}

type dashboardMessageRepository interface {
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// AdminStats summarises the school for the administrator dashboard.
type AdminStats struct {
	Students        int `json:"students"`
	Teachers        int `json:"teachers"`
	Parents         int `json:"parents"`
	PendingAccounts int `json:"pending_accounts"`
}

// ParentDashboard is what a parent sees on login.
type ParentDashboard struct {
	Children       []models.LinkedChild    `json:"children"`
	UnreadMessages int                     `json:"unread_messages"`
	Ticker         []models.NewsTickerItem `json:"ticker"`
}

// TeacherDashboard is what a teacher sees on login.
type TeacherDashboard struct {
	GradeLevels    []string                `json:"grade_levels"`
	UnreadMessages int                     `json:"unread_messages"`
	Ticker         []models.NewsTickerItem `json:"ticker"`
}

// DashboardService aggregates per-role landing page data. Admin counts are
// cached in Redis since they back every admin page load.
type DashboardService struct {
	users    dashboardUserRepository
	students dashboardStudentRepository
	links    dashboardLinkRepository
	messages dashboardMessageRepository
	ticker   *TickerService
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService. The cache client may be
// nil, in which case stats are computed on every call.
func NewDashboardService(users dashboardUserRepository, students dashboardStudentRepository, links dashboardLinkRepository, messages dashboardMessageRepository, ticker *TickerService, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		users:    users,
		students: students,
		links:    links,
		messages: messages,
		ticker:   ticker,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// AdminStats returns headline counts, served from cache when fresh.
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, adminStatsCacheKey).Result()
		if err == nil {
			var stats AdminStats
			if json.Unmarshal([]byte(raw), &stats) == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.computeAdminStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, adminStatsCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// InvalidateAdminStats drops the cached counts after approvals or imports.
func (s *DashboardService) InvalidateAdminStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, adminStatsCacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// ForParent assembles the parent landing page.
func (s *DashboardService) ForParent(ctx context.Context, parentID string) (*ParentDashboard, error) {
	children, err := s.links.ListChildren(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	if children == nil {
		children = []models.LinkedChild{}
	}
	unread, err := s.messages.UnreadCount(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	ticker, err := s.ticker.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return &ParentDashboard{Children: children, UnreadMessages: unread, Ticker: ticker}, nil
}

// ForTeacher assembles the teacher landing page.
func (s *DashboardService) ForTeacher(ctx context.Context, teacherID string) (*TeacherDashboard, error) {
	gradeLevels, err := s.links.TeacherGradeLevels(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher grade levels")
	}
	if gradeLevels == nil {
		gradeLevels = []string{}
	}
	unread, err := s.messages.UnreadCount(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	ticker, err := s.ticker.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return &TeacherDashboard{GradeLevels: gradeLevels, UnreadMessages: unread, Ticker: ticker}, nil
}

func (s *DashboardService) computeAdminStats(ctx context.Context) (*AdminStats, error) {
	students, err := s.students.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	teachers, err := s.users.CountByRole(ctx, models.RoleTeacher)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	parents, err := s.users.CountByRole(ctx, models.RoleParent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count parents")
	}
	pending, err := s.users.CountPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending accounts")
	}
	return &AdminStats{Students: students, Teachers: teachers, Parents: parents, PendingAccounts: pending}, nil
}
