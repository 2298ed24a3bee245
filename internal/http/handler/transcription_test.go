package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskdeck.app/assistant/internal/http/handler"
)

func audioRequest(field, filename, content string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write([]byte(content))
	Expect(err).NotTo(HaveOccurred())
	Expect(mw.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/transcriptions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var _ = Describe("TranscriptionHandler", func() {
	var (
		router      *gin.Engine
		transcriber *mockTranscriber
	)

	newRouter := func(t *mockTranscriber) *gin.Engine {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		var h *handler.TranscriptionHandler
		if t != nil {
			h = handler.NewTranscriptionHandler(t)
		} else {
			h = handler.NewTranscriptionHandler(nil)
		}
		r.POST("/api/v1/assistant/transcriptions", h.Create)
		return r
	}

	BeforeEach(func() {
		transcriber = &mockTranscriber{}
		router = newRouter(transcriber)
	})

	It("returns the transcribed text", func() {
		transcriber.transcribeFn = func(_ context.Context, audio io.Reader, filename string) (string, error) {
			data, err := io.ReadAll(audio)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("fake-audio-bytes")))
			Expect(filename).To(Equal("clip.webm"))
			return "show my overdue tasks", nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, audioRequest("audio", "clip.webm", "fake-audio-bytes"))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("show my overdue tasks"))
	})

	It("rejects a request without an audio file", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, audioRequest("wrong_field", "clip.webm", "x"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("reports silence as unprocessable", func() {
		transcriber.transcribeFn = func(context.Context, io.Reader, string) (string, error) {
			return "   ", nil
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, audioRequest("audio", "clip.webm", "x"))
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("maps upstream failures to 502", func() {
		transcriber.transcribeFn = func(context.Context, io.Reader, string) (string, error) {
			return "", errors.New("upstream down")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, audioRequest("audio", "clip.webm", "x"))
		Expect(w.Code).To(Equal(http.StatusBadGateway))
	})

	It("returns 503 when transcription is not configured", func() {
		unconfigured := newRouter(nil)

		w := httptest.NewRecorder()
		unconfigured.ServeHTTP(w, audioRequest("audio", "clip.webm", "x"))
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
