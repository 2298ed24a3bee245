package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskdeck.app/assistant/internal/http/handler"
	"taskdeck.app/assistant/internal/model"
)

var _ = Describe("AssistantHandler", func() {
	var (
		router *gin.Engine
		hub    *mockSessionHub
		conv   *mockConversation
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		conv = &mockConversation{}
		hub = &mockSessionHub{conv: conv}

		h := handler.NewAssistantHandler(hub)
		g := router.Group("/api/v1/workspaces/:workspace_id/assistant")
		g.GET("/messages", h.Transcript)
		g.POST("/messages", h.Send)
		g.DELETE("/messages", h.Clear)
		g.POST("/retry", h.Retry)
		g.POST("/abort", h.Abort)
	})

	Describe("POST /messages", func() {
		It("runs the turn for the header's user and returns the transcript", func() {
			var gotUser int64
			var gotText string
			conv.sendFn = func(_ context.Context, actingUserID int64, text string) {
				gotUser = actingUserID
				gotText = text
			}
			conv.messagesFn = func() []model.ChatMessage {
				return []model.ChatMessage{
					{ID: 1, Role: model.ChatRoleUser, Content: "hi", Timestamp: time.Now()},
					{ID: 2, Role: model.ChatRoleAssistant, Content: "hello!", Timestamp: time.Now()},
				}
			}

			body, _ := json.Marshal(map[string]string{"message": "hi"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/42/assistant/messages", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "11")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(gotUser).To(Equal(int64(11)))
			Expect(gotText).To(Equal("hi"))
			Expect(hub.workspaceIDs).To(Equal([]int64{42}))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["messages"]).To(HaveLen(2))
			Expect(resp["can_retry"]).To(BeFalse())
		})

		It("rejects a missing X-User-ID header", func() {
			body, _ := json.Marshal(map[string]string{"message": "hi"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/42/assistant/messages", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a body without a message", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/42/assistant/messages", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "11")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects a non-numeric workspace id", func() {
			body, _ := json.Marshal(map[string]string{"message": "hi"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/acme/assistant/messages", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-User-ID", "11")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /messages", func() {
		It("returns an empty array, not null, for a fresh session", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/42/assistant/messages", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"messages":[]`))
		})
	})

	Describe("POST /retry", func() {
		It("delegates to the session", func() {
			retried := false
			conv.retryFn = func(context.Context) { retried = true }

			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/42/assistant/retry", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(retried).To(BeTrue())
		})
	})

	Describe("POST /abort", func() {
		It("returns 202 and signals the session", func() {
			aborted := false
			conv.abortFn = func() { aborted = true }

			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/42/assistant/abort", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(aborted).To(BeTrue())
		})
	})

	Describe("DELETE /messages", func() {
		It("clears the conversation", func() {
			cleared := false
			conv.clearFn = func(context.Context) error {
				cleared = true
				return nil
			}

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/workspaces/42/assistant/messages", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(cleared).To(BeTrue())
		})

		It("returns 500 when the store delete fails", func() {
			conv.clearFn = func(context.Context) error {
				return errors.New("redis gone")
			}

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/workspaces/42/assistant/messages", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
