package assistant

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskdeck.app/assistant/internal/model"
)

var _ = Describe("persistable", func() {
	It("drops loading and empty messages and strips transient fields", func() {
		messages := []model.ChatMessage{
			{ID: 1, Role: model.ChatRoleUser, Content: "question"},
			{ID: 2, Role: model.ChatRoleAssistant, IsLoading: true, Status: "Thinking"},
			{ID: 3, Role: model.ChatRoleAssistant, Content: "answer", Status: "leftover"},
		}

		out := persistable(messages)

		Expect(out).To(HaveLen(2))
		Expect(out[0].ID).To(Equal(int64(1)))
		Expect(out[1].ID).To(Equal(int64(3)))
		Expect(out[1].Status).To(BeEmpty())
		Expect(out[1].IsLoading).To(BeFalse())
	})

	It("keeps buttons on finished messages", func() {
		messages := []model.ChatMessage{
			{ID: 1, Role: model.ChatRoleAssistant, Content: "done", Buttons: []model.SmartButton{{Label: "Go", Action: "open_task"}}},
		}

		out := persistable(messages)
		Expect(out[0].Buttons).To(HaveLen(1))
	})
})

var _ = Describe("debouncer", func() {
	It("collapses a burst of schedules into one run", func() {
		d := newDebouncer(20 * time.Millisecond)
		var runs atomic.Int32

		for i := 0; i < 5; i++ {
			d.Schedule(func() { runs.Add(1) })
		}

		Eventually(runs.Load, time.Second, 5*time.Millisecond).Should(Equal(int32(1)))
		Consistently(runs.Load, 100*time.Millisecond).Should(Equal(int32(1)))
	})

	It("runs the pending function immediately on Flush", func() {
		d := newDebouncer(time.Hour)
		var runs atomic.Int32

		d.Schedule(func() { runs.Add(1) })
		d.Flush()

		Expect(runs.Load()).To(Equal(int32(1)))

		// Flush with nothing pending is a no-op.
		d.Flush()
		Expect(runs.Load()).To(Equal(int32(1)))
	})

	It("drops the pending function on Stop", func() {
		d := newDebouncer(20 * time.Millisecond)
		var runs atomic.Int32

		d.Schedule(func() { runs.Add(1) })
		d.Stop()

		Consistently(runs.Load, 100*time.Millisecond).Should(BeZero())
	})
})
