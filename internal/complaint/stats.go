package complaint

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

// ResolutionSample is one resolved complaint's timing, used to compute
// average resolution times in the application instead of the database so
// the aggregation works identically on every backend.
type ResolutionSample struct {
	Status     Status
	CreatedAt  time.Time
	ResolvedAt time.Time
}

type StatsRepository interface {
	StatusCounts(ctx context.Context, scope Scope) (map[Status]int64, error)
	PriorityCounts(ctx context.Context) (map[Priority]int64, error)
	DepartmentCounts(ctx context.Context) (map[string]int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	ResolutionSamples(ctx context.Context, scope Scope) ([]ResolutionSample, error)
	RatingSummary(ctx context.Context, scope Scope) (avg float64, count int64, err error)
}

// MyStats is a citizen's complaint tally. The per-status figures always
// sum to the total.
type MyStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in-progress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
}

// StatusBucket is one status slice of a department's workload.
// AvgResolutionTime is milliseconds, nil where nothing in the bucket has
// been resolved.
type StatusBucket struct {
	Count             int64    `json:"count"`
	AvgResolutionTime *float64 `json:"avgResolutionTime"`
}

type DepartmentStats struct {
	Department    string                  `json:"department"`
	Total         int64                   `json:"total"`
	ByStatus      map[Status]StatusBucket `json:"byStatus"`
	AverageRating float64                 `json:"averageRating"`
	TotalRatings  int64                   `json:"totalRatings"`
}

// DashboardStats is the admin's city-wide overview. AvgResolutionTime is
// milliseconds across every resolved complaint, nil until one exists.
type DashboardStats struct {
	Total             int64              `json:"total"`
	ByStatus          map[Status]int64   `json:"byStatus"`
	ByPriority        map[Priority]int64 `json:"byPriority"`
	ByDepartment      map[string]int64   `json:"byDepartment"`
	Recent            int64              `json:"recent"`
	DepartmentsCount  int                `json:"departmentsCount"`
	AvgResolutionTime *float64           `json:"avgResolutionTime"`
	AverageRating     float64            `json:"averageRating"`
	TotalRatings      int64              `json:"totalRatings"`
}

// StatsService aggregates complaint figures for the three dashboards and
// feeds the denormalized department counters.
type StatsService struct {
	repo   StatsRepository
	logger *slog.Logger
}

func NewStatsService(repo StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

var _ department.CounterSource = (*StatsService)(nil)

// MyStats tallies the acting citizen's complaints by status.
func (s *StatsService) MyStats(ctx context.Context, actor auth.Actor) (*MyStats, error) {
	counts, err := s.repo.StatusCounts(ctx, Scope{UserID: actor.UserID})
	if err != nil {
		s.logger.Error("citizen stats query failed", "error", err, "user_id", actor.UserID)
		return nil, internal.NewInternalError("Server error while retrieving statistics", err)
	}

	stats := &MyStats{
		Pending:    counts[StatusPending],
		InProgress: counts[StatusInProgress],
		Resolved:   counts[StatusResolved],
		Closed:     counts[StatusClosed],
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Resolved + stats.Closed
	return stats, nil
}

// DepartmentStats summarizes the acting staff member's department: workload
// per status with average resolution times, and the citizens' ratings.
func (s *StatsService) DepartmentStats(ctx context.Context, actor auth.Actor) (*DepartmentStats, error) {
	scope := Scope{Department: actor.Department}

	counts, err := s.repo.StatusCounts(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving department statistics", err)
	}

	samples, err := s.repo.ResolutionSamples(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving department statistics", err)
	}

	avgRating, totalRatings, err := s.repo.RatingSummary(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving department statistics", err)
	}

	byStatus := make(map[Status]StatusBucket, len(counts))
	var total int64
	for status, count := range counts {
		byStatus[status] = StatusBucket{Count: count, AvgResolutionTime: avgResolutionMillis(samples, status)}
		total += count
	}

	return &DepartmentStats{
		Department:    actor.Department,
		Total:         total,
		ByStatus:      byStatus,
		AverageRating: avgRating,
		TotalRatings:  totalRatings,
	}, nil
}

// DashboardStats builds the admin's city-wide overview. Recent counts the
// last seven days of submissions.
func (s *StatsService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	statusCounts, err := s.repo.StatusCounts(ctx, Scope{})
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	priorityCounts, err := s.repo.PriorityCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	departmentCounts, err := s.repo.DepartmentCounts(ctx)
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	recent, err := s.repo.CountCreatedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	samples, err := s.repo.ResolutionSamples(ctx, Scope{})
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	avgRating, totalRatings, err := s.repo.RatingSummary(ctx, Scope{})
	if err != nil {
		return nil, internal.NewInternalError("Server error while retrieving dashboard statistics", err)
	}

	var total int64
	for _, count := range statusCounts {
		total += count
	}

	return &DashboardStats{
		Total:             total,
		ByStatus:          statusCounts,
		ByPriority:        priorityCounts,
		ByDepartment:      departmentCounts,
		Recent:            recent,
		DepartmentsCount:  len(departmentCounts),
		AvgResolutionTime: overallResolutionMillis(samples),
		AverageRating:     avgRating,
		TotalRatings:      totalRatings,
	}, nil
}

// CountersFor recomputes one department's denormalized counters from the
// complaints table.
func (s *StatsService) CountersFor(ctx context.Context, dept string) (department.Counters, error) {
	scope := Scope{Department: dept}

	counts, err := s.repo.StatusCounts(ctx, scope)
	if err != nil {
		return department.Counters{}, err
	}

	avgRating, _, err := s.repo.RatingSummary(ctx, scope)
	if err != nil {
		return department.Counters{}, err
	}

	var total int64
	for _, count := range counts {
		total += count
	}

	return department.Counters{
		TotalComplaints:    total,
		ResolvedComplaints: counts[StatusResolved] + counts[StatusClosed],
		PendingComplaints:  counts[StatusPending],
		AverageRating:      avgRating,
	}, nil
}

func avgResolutionMillis(samples []ResolutionSample, status Status) *float64 {
	var sum time.Duration
	var n int64
	for _, sample := range samples {
		if sample.Status != status {
			continue
		}
		sum += sample.ResolvedAt.Sub(sample.CreatedAt)
		n++
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum.Milliseconds()) / float64(n)
	return &avg
}

// overallResolutionMillis averages across all samples regardless of their
// current status.
func overallResolutionMillis(samples []ResolutionSample) *float64 {
	var sum time.Duration
	for _, sample := range samples {
		sum += sample.ResolvedAt.Sub(sample.CreatedAt)
	}
	if len(samples) == 0 {
		return nil
	}
	avg := float64(sum.Milliseconds()) / float64(len(samples))
	return &avg
}
