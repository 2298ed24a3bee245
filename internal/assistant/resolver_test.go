package assistant

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskdeck.app/assistant/internal/model"
)

func fixtureContext() *WsContext {
	return &WsContext{
		WorkspaceID: 1,
		Projects: []model.Project{
			{ID: 101, WorkspaceID: 1, Name: "Website Redesign"},
			{ID: 102, WorkspaceID: 1, Name: "Mobile App"},
		},
		ProjectIDs: []int64{101, 102},
		ProjectName: map[int64]string{
			101: "Website Redesign",
			102: "Mobile App",
		},
		MemberIDs: []int64{11, 12},
		Profiles: []model.Profile{
			{UserID: 11, FullName: "John Smith", Email: "john@example.com"},
			{UserID: 12, FullName: "Jane Doe", Email: "jane@example.com"},
		},
		MemberName: map[int64]string{
			11: "John Smith",
			12: "Jane Doe",
		},
		MemberRole: map[int64]model.MemberRole{
			11: model.MemberRoleOwner,
			12: model.MemberRoleMember,
		},
	}
}

var _ = Describe("Entity resolution", func() {
	var wc *WsContext

	BeforeEach(func() {
		wc = fixtureContext()
	})

	Describe("ResolveProject", func() {
		It("matches case-insensitively by substring", func() {
			Expect(ResolveProject(wc, "website")).NotTo(BeNil())
			Expect(ResolveProject(wc, "WEBSITE").ID).To(Equal(int64(101)))
			Expect(ResolveProject(wc, "mobile").ID).To(Equal(int64(102)))
		})

		It("returns the first match in snapshot order when ambiguous", func() {
			wc.Projects = append(wc.Projects, model.Project{ID: 103, Name: "Website v2"})
			Expect(ResolveProject(wc, "website").ID).To(Equal(int64(101)))
		})

		It("returns nil for an empty or blank fragment", func() {
			Expect(ResolveProject(wc, "")).To(BeNil())
			Expect(ResolveProject(wc, "   ")).To(BeNil())
		})

		It("returns nil when nothing matches", func() {
			Expect(ResolveProject(wc, "zz-nomatch")).To(BeNil())
		})
	})

	Describe("ResolveMember", func() {
		It("matches partial names case-insensitively", func() {
			Expect(ResolveMember(wc, "john").UserID).To(Equal(int64(11)))
			Expect(ResolveMember(wc, "DOE").UserID).To(Equal(int64(12)))
		})

		It("returns nil when nothing matches", func() {
			Expect(ResolveMember(wc, "nobody")).To(BeNil())
		})
	})

	Describe("ResolveTask", func() {
		It("queries the store scoped to the workspace's projects", func() {
			tasks := &mockTaskStore{}
			tasks.searchByTitleFn = func(_ context.Context, projectIDs []int64, fragment string, limit int) ([]model.Task, error) {
				Expect(projectIDs).To(Equal([]int64{101, 102}))
				Expect(limit).To(Equal(1))
				return []model.Task{{ID: 7, Title: "Fix login bug"}}, nil
			}

			task, err := ResolveTask(context.Background(), tasks, wc, "login")
			Expect(err).NotTo(HaveOccurred())
			Expect(task.ID).To(Equal(int64(7)))
		})

		It("returns nil without querying when the fragment is empty", func() {
			tasks := &mockTaskStore{}
			tasks.searchByTitleFn = func(context.Context, []int64, string, int) ([]model.Task, error) {
				Fail("store should not be queried")
				return nil, nil
			}

			task, err := ResolveTask(context.Background(), tasks, wc, "  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(task).To(BeNil())
		})

		It("returns nil when the workspace has no projects", func() {
			wc.ProjectIDs = nil
			task, err := ResolveTask(context.Background(), &mockTaskStore{}, wc, "anything")
			Expect(err).NotTo(HaveOccurred())
			Expect(task).To(BeNil())
		})

		It("propagates store failures", func() {
			tasks := &mockTaskStore{}
			tasks.searchByTitleFn = func(context.Context, []int64, string, int) ([]model.Task, error) {
				return nil, errors.New("connection refused")
			}

			_, err := ResolveTask(context.Background(), tasks, wc, "login")
			Expect(err).To(MatchError(ContainSubstring("connection refused")))
		})
	})
})
