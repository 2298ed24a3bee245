package model_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskdeck.app/assistant/internal/model"
)

var _ = Describe("Task", func() {
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	due := func(t time.Time) *time.Time { return &t }

	Describe("IsOverdue", func() {
		It("is overdue when due in the past and not done", func() {
			task := model.Task{Status: model.TaskStatusTodo, DueDate: due(now.Add(-time.Hour))}
			Expect(task.IsOverdue(now)).To(BeTrue())
		})

		It("is not overdue when done", func() {
			task := model.Task{Status: model.TaskStatusDone, DueDate: due(now.Add(-time.Hour))}
			Expect(task.IsOverdue(now)).To(BeFalse())
		})

		It("is not overdue without a due date", func() {
			task := model.Task{Status: model.TaskStatusTodo}
			Expect(task.IsOverdue(now)).To(BeFalse())
		})

		It("is not overdue when due exactly now", func() {
			task := model.Task{Status: model.TaskStatusTodo, DueDate: due(now)}
			Expect(task.IsOverdue(now)).To(BeFalse())
		})
	})

	Describe("DaysOverdue", func() {
		It("floors partial days", func() {
			task := model.Task{DueDate: due(now.Add(-36 * time.Hour))}
			Expect(task.DaysOverdue(now)).To(Equal(1))
		})

		It("never goes negative for future due dates", func() {
			task := model.Task{DueDate: due(now.Add(48 * time.Hour))}
			Expect(task.DaysOverdue(now)).To(Equal(0))
		})

		It("is zero without a due date", func() {
			task := model.Task{}
			Expect(task.DaysOverdue(now)).To(Equal(0))
		})
	})
})
