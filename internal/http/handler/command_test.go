package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/threadrelay/internal/http/handler"
	"basegraph.app/threadrelay/internal/model"
	"basegraph.app/threadrelay/internal/service"
)

var _ = Describe("SlackHandler.SlashCommand", func() {
	var (
		router *gin.Engine
		relay  *mockRelayService
	)

	BeforeEach(func() {
		router = gin.New()
		relay = &mockRelayService{}
		h := handler.NewSlackHandler(relay)
		router.POST("/ghcomment", h.SlashCommand)
	})

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/ghcomment", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("relays the thread and reports the comment url", func() {
		w := post(url.Values{
			"text":       {"  https://github.com/acme/widgets/issues/42  "},
			"channel_id": {"C1"},
			"thread_ts":  {"1234567890.123456"},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("✅ Posted to GitHub: https://github.com/acme/widgets/issues/42#issuecomment-1"))
		Expect(relay.relayCalls).To(Equal([]service.RelayParams{{
			ChannelID:       "C1",
			ThreadTimestamp: "1234567890.123456",
			IssueURL:        "https://github.com/acme/widgets/issues/42",
		}}))
	})

	It("falls back to the message timestamp", func() {
		w := post(url.Values{
			"text":       {"https://github.com/acme/widgets/issues/42"},
			"channel_id": {"C1"},
			"message_ts": {"1111111111.000001"},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(relay.relayCalls[0].ThreadTimestamp).To(Equal("1111111111.000001"))
	})

	It("requires a thread", func() {
		w := post(url.Values{"text": {"https://github.com/acme/widgets/issues/42"}, "channel_id": {"C1"}})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(Equal("Missing thread."))
		Expect(relay.relayCalls).To(BeEmpty())
	})

	It("requires an issue url", func() {
		w := post(url.Values{"text": {"   "}, "channel_id": {"C1"}, "thread_ts": {"1234567890.123456"}})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(Equal("Missing issue URL."))
		Expect(relay.relayCalls).To(BeEmpty())
	})

	It("reports relay failures", func() {
		relay.relayFn = func(context.Context, service.RelayParams) (*model.RelayResult, error) {
			return nil, errors.New("boom")
		}

		w := post(url.Values{
			"text":       {"https://github.com/acme/widgets/issues/42"},
			"channel_id": {"C1"},
			"thread_ts":  {"1234567890.123456"},
		})

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(Equal("Failed to post comment: boom"))
	})
})
