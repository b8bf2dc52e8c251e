package complaint_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/civic-complaints/internal"
	"github.com/frahmantamala/civic-complaints/internal/auth"
	"github.com/frahmantamala/civic-complaints/internal/complaint"
	"github.com/frahmantamala/civic-complaints/internal/department"
)

var _ = Describe("Transition", func() {
	var (
		admin   auth.Actor
		staff   auth.Actor
		citizen auth.Actor
		c       *complaint.Complaint
	)

	BeforeEach(func() {
		admin = auth.Actor{UserID: 1, Role: auth.RoleAdmin}
		staff = auth.Actor{UserID: 2, Role: auth.RoleDepartment, Department: department.Sanitation}
		citizen = auth.Actor{UserID: 3, Role: auth.RoleCitizen}

		c = &complaint.Complaint{
			ID:         10,
			UserID:     citizen.UserID,
			Title:      "Overflowing garbage bins",
			Department: department.Sanitation,
			Status:     complaint.StatusPending,
			Priority:   complaint.PriorityMedium,
		}
	})

	Describe("SetPriority", func() {
		It("should let an admin set a valid priority", func() {
			eff, err := complaint.Transition(c, complaint.SetPriority{Priority: complaint.PriorityCritical}, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(eff.Priority).ToNot(BeNil())
			Expect(*eff.Priority).To(Equal(complaint.PriorityCritical))
			Expect(eff.Status).To(BeNil())
		})

		It("should reject an unknown priority value", func() {
			_, err := complaint.Transition(c, complaint.SetPriority{Priority: "urgent"}, admin)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Invalid priority value."))
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("should refuse non-admin actors", func() {
			_, err := complaint.Transition(c, complaint.SetPriority{Priority: complaint.PriorityHigh}, staff)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			_, err = complaint.Transition(c, complaint.SetPriority{Priority: complaint.PriorityHigh}, citizen)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})

	Describe("AssignDepartment", func() {
		It("should reroute and force in-progress", func() {
			eff, err := complaint.Transition(c, complaint.AssignDepartment{Department: department.PublicWorks}, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(*eff.Department).To(Equal(department.PublicWorks))
			Expect(*eff.Status).To(Equal(complaint.StatusInProgress))
		})

		It("should force in-progress even from resolved", func() {
			c.Status = complaint.StatusResolved

			eff, err := complaint.Transition(c, complaint.AssignDepartment{Department: department.PublicWorks}, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(*eff.Status).To(Equal(complaint.StatusInProgress))
		})

		It("should force in-progress even from closed", func() {
			c.Status = complaint.StatusClosed

			eff, err := complaint.Transition(c, complaint.AssignDepartment{Department: department.Electricity}, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(*eff.Status).To(Equal(complaint.StatusInProgress))
		})

		It("should reject departments outside the catalog", func() {
			_, err := complaint.Transition(c, complaint.AssignDepartment{Department: "Parks Department"}, admin)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Invalid department."))
		})
	})

	Describe("SetStatus", func() {
		Context("as admin", func() {
			It("should allow any valid status and carry notes", func() {
				eff, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusClosed, AdminNotes: "duplicate report"}, admin)

				Expect(err).ToNot(HaveOccurred())
				Expect(*eff.Status).To(Equal(complaint.StatusClosed))
				Expect(*eff.AdminNotes).To(Equal("duplicate report"))
			})

			It("should stamp resolution time when resolving", func() {
				eff, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusResolved}, admin)

				Expect(err).ToNot(HaveOccurred())
				Expect(eff.StampResolvedAt).To(BeTrue())
			})

			It("should not stamp resolution time for other statuses", func() {
				eff, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusInProgress}, admin)

				Expect(err).ToNot(HaveOccurred())
				Expect(eff.StampResolvedAt).To(BeFalse())
			})

			It("should reject an unknown status value", func() {
				_, err := complaint.Transition(c, complaint.SetStatus{Status: "reopened"}, admin)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Message).To(Equal("Invalid status value."))
			})
		})

		Context("as department staff", func() {
			It("should allow in-progress and resolved inside the department", func() {
				eff, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusInProgress}, staff)
				Expect(err).ToNot(HaveOccurred())
				Expect(*eff.Status).To(Equal(complaint.StatusInProgress))

				eff, err = complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusResolved}, staff)
				Expect(err).ToNot(HaveOccurred())
				Expect(eff.StampResolvedAt).To(BeTrue())
			})

			It("should reject pending and closed", func() {
				for _, status := range []complaint.Status{complaint.StatusPending, complaint.StatusClosed} {
					_, err := complaint.Transition(c, complaint.SetStatus{Status: status}, staff)

					appErr, ok := internal.IsAppError(err)
					Expect(ok).To(BeTrue())
					Expect(appErr.Message).To(Equal("Invalid status value. Department can only set to in-progress or resolved."))
				}
			})

			It("should hide complaints of other departments", func() {
				c.Department = department.WaterSupply

				_, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusResolved}, staff)
				Expect(err).To(Equal(internal.ErrComplaintNotFound))
			})
		})

		It("should refuse citizens", func() {
			_, err := complaint.Transition(c, complaint.SetStatus{Status: complaint.StatusResolved}, citizen)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})

	Describe("SubmitResolution", func() {
		It("should resolve with evidence and stamp the time", func() {
			eff, err := complaint.Transition(c, complaint.SubmitResolution{ImagePath: "uploads/resolutions/r.jpg", Notes: "bins replaced"}, staff)

			Expect(err).ToNot(HaveOccurred())
			Expect(*eff.Status).To(Equal(complaint.StatusResolved))
			Expect(*eff.ResolutionImage).To(Equal("uploads/resolutions/r.jpg"))
			Expect(*eff.ResolutionNotes).To(Equal("bins replaced"))
			Expect(eff.StampResolvedAt).To(BeTrue())
		})

		It("should reject closed complaints", func() {
			c.Status = complaint.StatusClosed

			_, err := complaint.Transition(c, complaint.SubmitResolution{ImagePath: "uploads/resolutions/r.jpg"}, staff)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Message).To(Equal("Complaint not found or already closed."))
			Expect(appErr.StatusCode).To(Equal(404))
		})

		It("should hide complaints of other departments", func() {
			c.Department = department.RoadTransport

			_, err := complaint.Transition(c, complaint.SubmitResolution{ImagePath: "uploads/resolutions/r.jpg"}, staff)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})

		It("should refuse admins and citizens", func() {
			_, err := complaint.Transition(c, complaint.SubmitResolution{ImagePath: "x.jpg"}, admin)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			_, err = complaint.Transition(c, complaint.SubmitResolution{ImagePath: "x.jpg"}, citizen)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})

	Describe("SubmitRating", func() {
		BeforeEach(func() {
			c.Status = complaint.StatusResolved
		})

		It("should accept the owner's rating and close the complaint", func() {
			eff, err := complaint.Transition(c, complaint.SubmitRating{Rating: 4, Feedback: "quick fix"}, citizen)

			Expect(err).ToNot(HaveOccurred())
			Expect(*eff.Rating).To(Equal(4))
			Expect(*eff.Feedback).To(Equal("quick fix"))
			Expect(*eff.Status).To(Equal(complaint.StatusClosed))
			Expect(eff.GuardUnrated).To(BeTrue())
		})

		It("should reject ratings outside 1 to 5", func() {
			for _, rating := range []int{0, -1, 6} {
				_, err := complaint.Transition(c, complaint.SubmitRating{Rating: rating}, citizen)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Message).To(Equal("Rating must be between 1 and 5."))
			}
		})

		It("should reject complaints that are not resolved", func() {
			c.Status = complaint.StatusInProgress

			_, err := complaint.Transition(c, complaint.SubmitRating{Rating: 3}, citizen)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})

		It("should reject a second rating", func() {
			rating := 5
			c.Rating = &rating

			_, err := complaint.Transition(c, complaint.SubmitRating{Rating: 3}, citizen)
			Expect(err).To(Equal(internal.ErrAlreadyRated))
		})

		It("should hide complaints owned by someone else", func() {
			other := auth.Actor{UserID: 99, Role: auth.RoleCitizen}

			_, err := complaint.Transition(c, complaint.SubmitRating{Rating: 3}, other)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})

		It("should refuse admins and staff", func() {
			_, err := complaint.Transition(c, complaint.SubmitRating{Rating: 3}, admin)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))

			_, err = complaint.Transition(c, complaint.SubmitRating{Rating: 3}, staff)
			Expect(err).To(Equal(internal.ErrComplaintNotFound))
		})
	})
})

var _ = Describe("ScopeFor", func() {
	It("should give admins an unrestricted scope", func() {
		scope := complaint.ScopeFor(auth.Actor{UserID: 1, Role: auth.RoleAdmin})
		Expect(scope.Unrestricted()).To(BeTrue())
	})

	It("should scope staff to their department", func() {
		scope := complaint.ScopeFor(auth.Actor{UserID: 2, Role: auth.RoleDepartment, Department: department.PublicHealth})
		Expect(scope.Department).To(Equal(department.PublicHealth))
		Expect(scope.UserID).To(BeZero())
	})

	It("should scope citizens to their own complaints", func() {
		scope := complaint.ScopeFor(auth.Actor{UserID: 3, Role: auth.RoleCitizen})
		Expect(scope.UserID).To(Equal(int64(3)))
		Expect(scope.Department).To(BeEmpty())
	})

	It("should give unknown roles a scope that matches nothing", func() {
		scope := complaint.ScopeFor(auth.Actor{UserID: 4, Role: "superuser"})
		Expect(scope.Unrestricted()).To(BeFalse())
	})
})
