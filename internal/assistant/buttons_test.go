package assistant

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseButtons", func() {
	It("returns plain text unchanged with no buttons", func() {
		text, buttons := ParseButtons("Here are your overdue tasks.")
		Expect(text).To(Equal("Here are your overdue tasks."))
		Expect(buttons).To(BeNil())
	})

	It("extracts a valid buttons block and strips it from the display text", func() {
		raw := "You have 3 overdue tasks.\n\n```buttons\n" +
			`[{"label": "Show them", "action": "send_message", "data": {"message": "show overdue"}}]` +
			"\n```"

		text, buttons := ParseButtons(raw)

		Expect(text).To(Equal("You have 3 overdue tasks."))
		Expect(buttons).To(HaveLen(1))
		Expect(buttons[0].Label).To(Equal("Show them"))
		Expect(buttons[0].Action).To(Equal("send_message"))
		Expect(buttons[0].Data).To(HaveKeyWithValue("message", "show overdue"))
	})

	It("handles a block in the middle of the text", func() {
		raw := "Before.\n```buttons\n[{\"label\": \"A\", \"action\": \"send_message\"}]\n```\nAfter."

		text, buttons := ParseButtons(raw)

		Expect(text).To(Equal("Before.\n\nAfter."))
		Expect(buttons).To(HaveLen(1))
	})

	It("degrades to no buttons when the block body is not valid JSON", func() {
		raw := "Answer.\n```buttons\nnot json at all\n```"

		text, buttons := ParseButtons(raw)

		Expect(text).To(Equal(raw))
		Expect(buttons).To(BeNil())
	})

	It("parses multiple buttons in one block", func() {
		raw := "Done.\n```buttons\n" +
			`[{"label": "Open task", "action": "open_task"}, {"label": "Start timer", "action": "start_timer"}]` +
			"\n```"

		_, buttons := ParseButtons(raw)

		Expect(buttons).To(HaveLen(2))
		Expect(buttons[1].Action).To(Equal("start_timer"))
	})
})
