package complaint_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

// Mock stats repository for testing
type mockStatsRepository struct {
	statusCounts     map[complaint.Status]int64
	priorityCounts   map[complaint.Priority]int64
	departmentCounts map[string]int64
	recent           int64
	samples          []complaint.ResolutionSample
	avgRating        float64
	totalRatings     int64
}

func (m *mockStatsRepository) StatusCounts(context.Context, complaint.Scope) (map[complaint.Status]int64, error) {
	return m.statusCounts, nil
}

func (m *mockStatsRepository) PriorityCounts(context.Context) (map[complaint.Priority]int64, error) {
	return m.priorityCounts, nil
}

func (m *mockStatsRepository) DepartmentCounts(context.Context) (map[string]int64, error) {
	return m.departmentCounts, nil
}

func (m *mockStatsRepository) CountCreatedSince(context.Context, time.Time) (int64, error) {
	return m.recent, nil
}

func (m *mockStatsRepository) ResolutionSamples(context.Context, complaint.Scope) ([]complaint.ResolutionSample, error) {
	return m.samples, nil
}

func (m *mockStatsRepository) RatingSummary(context.Context, complaint.Scope) (float64, int64, error) {
	return m.avgRating, m.totalRatings, nil
}

var _ = Describe("StatsService", func() {
	var (
		stats    *complaint.StatsService
		mockRepo *mockStatsRepository
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = &mockStatsRepository{
			statusCounts: map[complaint.Status]int64{
				complaint.StatusPending:    3,
				complaint.StatusInProgress: 2,
				complaint.StatusResolved:   4,
				complaint.StatusClosed:     1,
			},
			priorityCounts: map[complaint.Priority]int64{
				complaint.PriorityMedium: 8,
				complaint.PriorityHigh:   2,
			},
			departmentCounts: map[string]int64{
				department.Sanitation:  6,
				department.PublicWorks: 4,
			},
			recent:       5,
			avgRating:    4.5,
			totalRatings: 2,
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		stats = complaint.NewStatsService(mockRepo, logger)
		ctx = context.Background()
	})

	Describe("MyStats", func() {
		It("should tally per status with a matching total", func() {
			result, err := stats.MyStats(ctx, auth.Actor{UserID: 3, Role: auth.RoleCitizen})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Pending).To(Equal(int64(3)))
			Expect(result.InProgress).To(Equal(int64(2)))
			Expect(result.Resolved).To(Equal(int64(4)))
			Expect(result.Closed).To(Equal(int64(1)))
			Expect(result.Total).To(Equal(int64(10)))
		})
	})

	Describe("DepartmentStats", func() {
		It("should average resolution times per status bucket", func() {
			base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
			mockRepo.samples = []complaint.ResolutionSample{
				{Status: complaint.StatusResolved, CreatedAt: base, ResolvedAt: base.Add(2 * time.Hour)},
				{Status: complaint.StatusResolved, CreatedAt: base, ResolvedAt: base.Add(4 * time.Hour)},
				{Status: complaint.StatusClosed, CreatedAt: base, ResolvedAt: base.Add(1 * time.Hour)},
			}

			result, err := stats.DepartmentStats(ctx, auth.Actor{UserID: 2, Role: auth.RoleDepartment, Department: department.Sanitation})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Department).To(Equal(department.Sanitation))
			Expect(result.Total).To(Equal(int64(10)))
			Expect(result.AverageRating).To(Equal(4.5))
			Expect(result.TotalRatings).To(Equal(int64(2)))

			resolved := result.ByStatus[complaint.StatusResolved]
			Expect(resolved.Count).To(Equal(int64(4)))
			Expect(resolved.AvgResolutionTime).ToNot(BeNil())
			Expect(*resolved.AvgResolutionTime).To(Equal(float64((3 * time.Hour).Milliseconds())))

			pending := result.ByStatus[complaint.StatusPending]
			Expect(pending.Count).To(Equal(int64(3)))
			Expect(pending.AvgResolutionTime).To(BeNil())
		})
	})

	Describe("DashboardStats", func() {
		It("should aggregate the city-wide figures", func() {
			result, err := stats.DashboardStats(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Total).To(Equal(int64(10)))
			Expect(result.ByPriority[complaint.PriorityMedium]).To(Equal(int64(8)))
			Expect(result.ByDepartment[department.Sanitation]).To(Equal(int64(6)))
			Expect(result.Recent).To(Equal(int64(5)))
			Expect(result.DepartmentsCount).To(Equal(2))
		})

		It("should carry the global rating summary and resolution average", func() {
			base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
			mockRepo.samples = []complaint.ResolutionSample{
				{Status: complaint.StatusResolved, CreatedAt: base, ResolvedAt: base.Add(2 * time.Hour)},
				{Status: complaint.StatusClosed, CreatedAt: base, ResolvedAt: base.Add(4 * time.Hour)},
			}

			result, err := stats.DashboardStats(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AverageRating).To(Equal(4.5))
			Expect(result.TotalRatings).To(Equal(int64(2)))
			Expect(result.AvgResolutionTime).ToNot(BeNil())
			Expect(*result.AvgResolutionTime).To(Equal(float64((3 * time.Hour).Milliseconds())))
		})

		It("should leave the resolution average null with nothing resolved", func() {
			result, err := stats.DashboardStats(ctx)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.AvgResolutionTime).To(BeNil())
		})
	})

	Describe("CountersFor", func() {
		It("should fold resolved and closed into the resolved counter", func() {
			counters, err := stats.CountersFor(ctx, department.Sanitation)

			Expect(err).ToNot(HaveOccurred())
			Expect(counters.TotalComplaints).To(Equal(int64(10)))
			Expect(counters.ResolvedComplaints).To(Equal(int64(5)))
			Expect(counters.PendingComplaints).To(Equal(int64(3)))
			Expect(counters.AverageRating).To(Equal(4.5))
		})
	})
})
