package postgres

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	complaintDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/complaint"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

func TestComplaintRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ComplaintRepository Suite")
}

var _ = Describe("ComplaintRepository", func() {
	var (
		db   *gorm.DB
		repo *Repository
		ctx  context.Context
	)

	newComplaint := func(userID int64, dept string) *complaint.Complaint {
		return &complaint.Complaint{
			UserID:      userID,
			Title:       "Streetlight out",
			Description: "The lamp at the corner has been dark for a week",
			ImagePath:   "uploads/image-1.jpg",
			Location:    "Corner of 4th and Elm",
			Department:  dept,
			Status:      complaint.StatusPending,
			Priority:    complaint.PriorityMedium,
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&complaintDatamodel.Complaint{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Create and GetScoped", func() {
		It("should assign an ID and read the row back", func() {
			c := newComplaint(3, department.Electricity)

			Expect(repo.Create(ctx, c)).To(Succeed())
			Expect(c.ID).To(BeNumerically(">", 0))

			got, err := repo.GetScoped(ctx, c.ID, complaint.Scope{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal(c.Title))
			Expect(got.Status).To(Equal(complaint.StatusPending))
		})

		It("should report the same not-found for missing and out-of-scope rows", func() {
			c := newComplaint(3, department.Electricity)
			Expect(repo.Create(ctx, c)).To(Succeed())

			_, err := repo.GetScoped(ctx, 9999, complaint.Scope{})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			_, err = repo.GetScoped(ctx, c.ID, complaint.Scope{UserID: 42})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			_, err = repo.GetScoped(ctx, c.ID, complaint.Scope{Department: department.Sanitation})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})

	Describe("List", func() {
		It("should order department queues by priority then age", func() {
			low := newComplaint(3, department.Sanitation)
			low.Priority = complaint.PriorityLow
			Expect(repo.Create(ctx, low)).To(Succeed())

			critical := newComplaint(4, department.Sanitation)
			critical.Priority = complaint.PriorityCritical
			Expect(repo.Create(ctx, critical)).To(Succeed())

			high := newComplaint(5, department.Sanitation)
			high.Priority = complaint.PriorityHigh
			Expect(repo.Create(ctx, high)).To(Succeed())

			items, total, err := repo.List(ctx, complaint.Scope{Department: department.Sanitation}, complaint.ListFilter{Page: 1, Limit: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(items[0].Priority).To(Equal(complaint.PriorityCritical))
			Expect(items[1].Priority).To(Equal(complaint.PriorityHigh))
			Expect(items[2].Priority).To(Equal(complaint.PriorityLow))
		})

		It("should filter by status and paginate with a stable total", func() {
			for i := 0; i < 3; i++ {
				Expect(repo.Create(ctx, newComplaint(3, department.PublicWorks))).To(Succeed())
			}
			resolved := newComplaint(3, department.PublicWorks)
			resolved.Status = complaint.StatusResolved
			Expect(repo.Create(ctx, resolved)).To(Succeed())

			items, total, err := repo.List(ctx, complaint.Scope{}, complaint.ListFilter{Status: "pending", Page: 1, Limit: 2})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(items).To(HaveLen(2))
		})
	})

	Describe("ApplyUpdate", func() {
		It("should stamp the resolution time once only", func() {
			c := newComplaint(3, department.WaterSupply)
			Expect(repo.Create(ctx, c)).To(Succeed())

			resolved := complaint.StatusResolved
			first, err := repo.ApplyUpdate(ctx, c.ID, complaint.Scope{}, complaint.Effect{Status: &resolved, StampResolvedAt: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(first.ResolvedAt).NotTo(BeNil())

			inProgress := complaint.StatusInProgress
			_, err = repo.ApplyUpdate(ctx, c.ID, complaint.Scope{}, complaint.Effect{Status: &inProgress})
			Expect(err).NotTo(HaveOccurred())

			time.Sleep(10 * time.Millisecond)
			second, err := repo.ApplyUpdate(ctx, c.ID, complaint.Scope{}, complaint.Effect{Status: &resolved, StampResolvedAt: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ResolvedAt.Equal(*first.ResolvedAt)).To(BeTrue())
		})

		It("should accept a rating once and reject the second attempt", func() {
			c := newComplaint(3, department.WaterSupply)
			c.Status = complaint.StatusResolved
			Expect(repo.Create(ctx, c)).To(Succeed())

			closed := complaint.StatusClosed
			rating := 4
			feedback := "fixed fast"
			eff := complaint.Effect{Status: &closed, Rating: &rating, Feedback: &feedback, GuardUnrated: true}

			updated, err := repo.ApplyUpdate(ctx, c.ID, complaint.Scope{UserID: 3}, eff)
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.Rating).To(Equal(4))
			Expect(updated.Status).To(Equal(complaint.StatusClosed))

			_, err = repo.ApplyUpdate(ctx, c.ID, complaint.Scope{UserID: 3}, eff)
			Expect(err).To(Equal(internal.ErrAlreadyRated))
		})

		It("should refuse updates outside the scope", func() {
			c := newComplaint(3, department.WaterSupply)
			Expect(repo.Create(ctx, c)).To(Succeed())

			status := complaint.StatusInProgress
			_, err := repo.ApplyUpdate(ctx, c.ID, complaint.Scope{Department: department.Municipal}, complaint.Effect{Status: &status})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})

	Describe("aggregations", func() {
		BeforeEach(func() {
			pending := newComplaint(3, department.PublicHealth)
			Expect(repo.Create(ctx, pending)).To(Succeed())

			rated := newComplaint(3, department.PublicHealth)
			rated.Status = complaint.StatusClosed
			rating := 5
			rated.Rating = &rating
			now := time.Now()
			rated.ResolvedAt = &now
			Expect(repo.Create(ctx, rated)).To(Succeed())

			other := newComplaint(7, department.Municipal)
			Expect(repo.Create(ctx, other)).To(Succeed())
		})

		It("should count statuses inside the scope", func() {
			counts, err := repo.StatusCounts(ctx, complaint.Scope{Department: department.PublicHealth})

			Expect(err).NotTo(HaveOccurred())
			Expect(counts[complaint.StatusPending]).To(Equal(int64(1)))
			Expect(counts[complaint.StatusClosed]).To(Equal(int64(1)))
		})

		It("should group by department city-wide", func() {
			counts, err := repo.DepartmentCounts(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(counts[department.PublicHealth]).To(Equal(int64(2)))
			Expect(counts[department.Municipal]).To(Equal(int64(1)))
		})

		It("should average only rated complaints", func() {
			avg, count, err := repo.RatingSummary(ctx, complaint.Scope{Department: department.PublicHealth})

			Expect(err).NotTo(HaveOccurred())
			Expect(avg).To(Equal(5.0))
			Expect(count).To(Equal(int64(1)))
		})

		It("should return resolution samples for a department scope", func() {
			samples, err := repo.ResolutionSamples(ctx, complaint.Scope{Department: department.PublicHealth})

			Expect(err).NotTo(HaveOccurred())
			Expect(samples).To(HaveLen(1))
			Expect(samples[0].Status).To(Equal(complaint.StatusClosed))
		})

		It("should return every resolved complaint for the unrestricted scope", func() {
			fixed := newComplaint(7, department.Municipal)
			fixed.Status = complaint.StatusResolved
			now := time.Now()
			fixed.ResolvedAt = &now
			Expect(repo.Create(ctx, fixed)).To(Succeed())

			samples, err := repo.ResolutionSamples(ctx, complaint.Scope{})

			Expect(err).NotTo(HaveOccurred())
			Expect(samples).To(HaveLen(2))
		})
	})
})
