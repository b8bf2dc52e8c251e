package complaint_test

import (
	"context"
	"log/slog"
	"mime/multipart"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	"github.com/frahmantamala/civic-complaints/internal/core/events"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

// Mock repository for testing
type mockComplaintRepository struct {
	complaints  map[int64]*complaint.Complaint
	createError error
	nextID      int64
}

func newMockComplaintRepository() *mockComplaintRepository {
	return &mockComplaintRepository{
		complaints: make(map[int64]*complaint.Complaint),
		nextID:     1,
	}
}

func (m *mockComplaintRepository) Create(_ context.Context, c *complaint.Complaint) error {
	if m.createError != nil {
		return m.createError
	}
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	stored := *c
	m.complaints[c.ID] = &stored
	return nil
}

func (m *mockComplaintRepository) GetScoped(_ context.Context, id int64, scope complaint.Scope) (*complaint.Complaint, error) {
	c, exists := m.complaints[id]
	if !exists || !inScope(c, scope) {
		return nil, internal.ErrComplaintNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockComplaintRepository) List(_ context.Context, scope complaint.Scope, filter complaint.ListFilter) ([]*complaint.Complaint, int64, error) {
	var matched []*complaint.Complaint
	for _, c := range m.complaints {
		if !inScope(c, scope) {
			continue
		}
		if filter.Status != "" && string(c.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(c.Priority) != filter.Priority {
			continue
		}
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		copied := *c
		matched = append(matched, &copied)
	}

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []*complaint.Complaint{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *mockComplaintRepository) ApplyUpdate(_ context.Context, id int64, scope complaint.Scope, eff complaint.Effect) (*complaint.Complaint, error) {
	c, exists := m.complaints[id]
	if !exists || !inScope(c, scope) {
		return nil, internal.ErrComplaintNotFound
	}
	if eff.GuardUnrated && (c.Rating != nil || c.Status != complaint.StatusResolved) {
		return nil, internal.ErrAlreadyRated
	}

	if eff.Status != nil {
		c.Status = *eff.Status
	}
	if eff.Priority != nil {
		c.Priority = *eff.Priority
	}
	if eff.Department != nil {
		c.Department = *eff.Department
	}
	if eff.AdminNotes != nil {
		c.AdminNotes = *eff.AdminNotes
	}
	if eff.ResolutionImage != nil {
		c.ResolutionImagePath = eff.ResolutionImage
	}
	if eff.ResolutionNotes != nil {
		c.ResolutionNotes = *eff.ResolutionNotes
	}
	if eff.Rating != nil {
		c.Rating = eff.Rating
	}
	if eff.Feedback != nil {
		c.Feedback = *eff.Feedback
	}
	if eff.StampResolvedAt && c.ResolvedAt == nil {
		now := time.Now()
		c.ResolvedAt = &now
	}
	c.UpdatedAt = time.Now()

	copied := *c
	return &copied, nil
}

func inScope(c *complaint.Complaint, scope complaint.Scope) bool {
	if scope.UserID != 0 && c.UserID != scope.UserID {
		return false
	}
	if scope.Department != "" && c.Department != scope.Department {
		return false
	}
	return true
}

// Mock file store for testing
type mockFileStore struct {
	saveError error
	saved     []string
}

func (m *mockFileStore) SaveImage(fh *multipart.FileHeader) (string, error) {
	return m.save("uploads/image-" + fh.Filename)
}

func (m *mockFileStore) SaveVoiceNote(fh *multipart.FileHeader) (string, error) {
	return m.save("uploads/voiceNote-" + fh.Filename)
}

func (m *mockFileStore) SaveResolutionImage(fh *multipart.FileHeader) (string, error) {
	return m.save("uploads/resolutions/resolution-" + fh.Filename)
}

func (m *mockFileStore) save(path string) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	m.saved = append(m.saved, path)
	return path, nil
}

// Mock event publisher for testing
type mockEventPublisher struct {
	published []events.Event
}

func (m *mockEventPublisher) Publish(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	types := make([]string, len(m.published))
	for i, e := range m.published {
		types[i] = e.EventType()
	}
	return types
}

var _ = Describe("ComplaintService", func() {
	var (
		service  *complaint.Service
		mockRepo *mockComplaintRepository
		files    *mockFileStore
		bus      *mockEventPublisher
		logger   *slog.Logger
		ctx      context.Context

		admin   auth.Actor
		staff   auth.Actor
		citizen auth.Actor
	)

	imageFile := &multipart.FileHeader{Filename: "pothole.jpg", Size: 1024}
	voiceFile := &multipart.FileHeader{Filename: "note.webm", Size: 2048}

	validDTO := complaint.CreateComplaintDTO{
		Title:       "Pothole on main road",
		Description: "Deep pothole near the market crossing",
		Location:    "Main Road, Ward 4",
		Department:  department.RoadTransport,
	}

	BeforeEach(func() {
		mockRepo = newMockComplaintRepository()
		files = &mockFileStore{}
		bus = &mockEventPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = complaint.NewService(mockRepo, files, bus, logger)
		ctx = context.Background()

		admin = auth.Actor{UserID: 1, Role: auth.RoleAdmin}
		staff = auth.Actor{UserID: 2, Role: auth.RoleDepartment, Department: department.RoadTransport}
		citizen = auth.Actor{UserID: 3, Role: auth.RoleCitizen}
	})

	submit := func(actor auth.Actor) *complaint.Complaint {
		c, err := service.Create(ctx, actor, validDTO, imageFile, nil)
		Expect(err).ToNot(HaveOccurred())
		return c
	}

	Describe("Create", func() {
		It("should register a pending medium-priority complaint", func() {
			c, err := service.Create(ctx, citizen, validDTO, imageFile, voiceFile)

			Expect(err).ToNot(HaveOccurred())
			Expect(c.ID).To(BeNumerically(">", 0))
			Expect(c.UserID).To(Equal(citizen.UserID))
			Expect(c.Status).To(Equal(complaint.StatusPending))
			Expect(c.Priority).To(Equal(complaint.PriorityMedium))
			Expect(c.ImagePath).To(Equal("uploads/image-pothole.jpg"))
			Expect(c.VoiceNotePath).ToNot(BeNil())
			Expect(bus.eventTypes()).To(ConsistOf(events.EventTypeComplaintCreated))
		})

		It("should require an image", func() {
			_, err := service.Create(ctx, citizen, validDTO, nil, nil)

			Expect(err).To(Equal(internal.ErrImageRequired))
			Expect(bus.published).To(BeEmpty())
		})

		It("should reject missing fields before touching storage", func() {
			dto := validDTO
			dto.Title = ""

			_, err := service.Create(ctx, citizen, dto, imageFile, nil)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(files.saved).To(BeEmpty())
		})

		It("should reject departments outside the catalog", func() {
			dto := validDTO
			dto.Department = "Traffic Police"

			_, err := service.Create(ctx, citizen, dto, imageFile, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get and List", func() {
		It("should hide other citizens' complaints", func() {
			c := submit(citizen)

			other := auth.Actor{UserID: 42, Role: auth.RoleCitizen}
			_, err := service.Get(ctx, other, c.ID)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			got, err := service.Get(ctx, citizen, c.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(c.ID))
		})

		It("should ignore a department filter smuggled into a citizen listing", func() {
			submit(citizen)

			result, err := service.List(ctx, citizen, complaint.ListFilter{Department: department.Sanitation})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Count).To(Equal(1))
		})

		It("should let admins filter by department", func() {
			submit(citizen)

			result, err := service.List(ctx, admin, complaint.ListFilter{Department: department.Sanitation})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Count).To(BeZero())

			result, err = service.List(ctx, admin, complaint.ListFilter{Department: department.RoadTransport})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Count).To(Equal(1))
		})

		It("should reject invalid filter values", func() {
			_, err := service.List(ctx, admin, complaint.ListFilter{Status: "open"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Invalid status value."))
		})

		It("should compute page counts from the total", func() {
			for i := 0; i < 5; i++ {
				submit(citizen)
			}

			result, err := service.List(ctx, admin, complaint.ListFilter{Page: 1, Limit: 2})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Count).To(Equal(2))
			Expect(result.Total).To(Equal(int64(5)))
			Expect(result.Pages).To(Equal(int64(3)))
		})
	})

	Describe("AssignDepartment", func() {
		It("should reroute, restart work and announce both departments", func() {
			c := submit(citizen)

			updated, err := service.AssignDepartment(ctx, admin, c.ID, complaint.AssignDepartmentDTO{Department: department.PublicWorks})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Department).To(Equal(department.PublicWorks))
			Expect(updated.Status).To(Equal(complaint.StatusInProgress))

			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeComplaintAssigned))
			last := bus.published[len(bus.published)-1].(*events.ComplaintEvent)
			Expect(last.Department).To(Equal(department.PublicWorks))
			Expect(last.PreviousDepartment).To(Equal(department.RoadTransport))
		})

		It("should not announce a reassignment to the same department", func() {
			c := submit(citizen)

			_, err := service.AssignDepartment(ctx, admin, c.ID, complaint.AssignDepartmentDTO{Department: department.RoadTransport})

			Expect(err).ToNot(HaveOccurred())
			Expect(bus.eventTypes()).ToNot(ContainElement(events.EventTypeComplaintAssigned))
		})
	})

	Describe("UpdateStatus", func() {
		It("should publish a resolved event when resolving", func() {
			c := submit(citizen)

			updated, err := service.UpdateStatus(ctx, staff, c.ID, complaint.UpdateStatusDTO{Status: "resolved"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(complaint.StatusResolved))
			Expect(updated.ResolvedAt).ToNot(BeNil())
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeComplaintResolved))
		})

		It("should keep the first resolution timestamp on re-resolution", func() {
			c := submit(citizen)

			first, err := service.UpdateStatus(ctx, staff, c.ID, complaint.UpdateStatusDTO{Status: "resolved"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.UpdateStatus(ctx, staff, c.ID, complaint.UpdateStatusDTO{Status: "in-progress"})
			Expect(err).ToNot(HaveOccurred())

			second, err := service.UpdateStatus(ctx, staff, c.ID, complaint.UpdateStatusDTO{Status: "resolved"})
			Expect(err).ToNot(HaveOccurred())
			Expect(second.ResolvedAt.Equal(*first.ResolvedAt)).To(BeTrue())
		})
	})

	Describe("SubmitResolution", func() {
		It("should store evidence and resolve", func() {
			c := submit(citizen)

			updated, err := service.SubmitResolution(ctx, staff, c.ID, "patched the road", imageFile)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(complaint.StatusResolved))
			Expect(updated.ResolutionNotes).To(Equal("patched the road"))
			Expect(updated.ResolutionImagePath).ToNot(BeNil())
			Expect(updated.ResolvedAt).ToNot(BeNil())
		})

		It("should require the resolution image", func() {
			c := submit(citizen)

			_, err := service.SubmitResolution(ctx, staff, c.ID, "", nil)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Resolution image is required."))
		})
	})

	Describe("SubmitRating", func() {
		It("should close the complaint and record the rating once", func() {
			c := submit(citizen)
			_, err := service.UpdateStatus(ctx, staff, c.ID, complaint.UpdateStatusDTO{Status: "resolved"})
			Expect(err).ToNot(HaveOccurred())

			updated, err := service.SubmitRating(ctx, citizen, c.ID, complaint.RateComplaintDTO{Rating: 5, Feedback: "thanks"})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(complaint.StatusClosed))
			Expect(*updated.Rating).To(Equal(5))
			Expect(bus.eventTypes()).To(ContainElement(events.EventTypeComplaintRated))

			_, err = service.SubmitRating(ctx, citizen, c.ID, complaint.RateComplaintDTO{Rating: 1})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})

		It("should reject rating a pending complaint", func() {
			c := submit(citizen)

			_, err := service.SubmitRating(ctx, citizen, c.ID, complaint.RateComplaintDTO{Rating: 4})
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})
})
