package chat_test

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/threadrelay/internal/model"
	"basegraph.app/threadrelay/internal/service/chat"
)

var _ = Describe("SlackClient", func() {
	var (
		ctx    context.Context
		fake   *fakeSlack
		client chat.Client
		ref    model.ThreadReference
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = newFakeSlack()
		client = chat.NewSlackClient(chat.NewSlackAPI("xoxb-test", fake.url()), chat.Options{})
		ref = model.ThreadReference{ChannelID: "C123", ThreadTimestamp: "1234567890.123456"}
	})

	AfterEach(func() {
		fake.close()
	})

	Describe("FetchThread", func() {
		It("returns messages with the author's resolved name", func() {
			fake.on("conversations.replies", repliesBody(message("U123", "Hello world")))
			fake.user("U123", userBody("U123", "John Doe", "", "jdoe"))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Text).To(Equal("Hello world"))
			Expect(msgs[0].AuthorID).To(Equal("U123"))
			Expect(msgs[0].AuthorDisplayName).To(Equal("John Doe"))

			calls := fake.callsTo("conversations.replies")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0]["channel"]).To(Equal("C123"))
			Expect(calls[0]["ts"]).To(Equal("1234567890.123456"))
		})

		It("resolves mentioned users into the mention map", func() {
			fake.on("conversations.replies", repliesBody(message("U123", "Hello <@U456>")))
			fake.user("U123", userBody("U123", "John Doe", "", "jdoe"))
			fake.user("U456", userBody("U456", "Jane Smith", "", "jsmith"))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].MentionMap).To(HaveKeyWithValue("U456", "Jane Smith"))
		})

		It("gives every message the full directory of the thread", func() {
			fake.on("conversations.replies", repliesBody(
				message("U1", "first"),
				message("U2", "ping <@U3>"),
			))
			fake.user("U1", userBody("U1", "Ann", "", "ann"))
			fake.user("U2", userBody("U2", "Bob", "", "bob"))
			fake.user("U3", userBody("U3", "Cid", "", "cid"))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(2))
			for _, m := range msgs {
				Expect(m.MentionMap).To(Equal(map[string]string{"U1": "Ann", "U2": "Bob", "U3": "Cid"}))
			}
		})

		It("looks each distinct user up once", func() {
			fake.on("conversations.replies", repliesBody(
				message("U1", "hi <@U1>"),
				message("U1", "again <@U1>"),
			))
			fake.user("U1", userBody("U1", "Ann", "", "ann"))

			client.FetchThread(ctx, ref)

			Expect(fake.callsTo("users.info")).To(HaveLen(1))
		})

		It("keeps the raw id when a lookup fails", func() {
			fake.on("conversations.replies", repliesBody(message("U404", "hello")))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].AuthorDisplayName).To(Equal("U404"))
		})

		It("joins the channel and retries once on not_in_channel", func() {
			fake.on("conversations.replies",
				slackError("not_in_channel"),
				repliesBody(message("U123", "after join")),
			)
			fake.on("conversations.join", `{"ok":true,"channel":{"id":"C123"}}`)
			fake.user("U123", userBody("U123", "John Doe", "", "jdoe"))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Text).To(Equal("after join"))
			Expect(fake.callsTo("conversations.join")).To(HaveLen(1))
			Expect(fake.callsTo("conversations.join")[0]["channel"]).To(Equal("C123"))
			Expect(fake.callsTo("conversations.replies")).To(HaveLen(2))
		})

		It("does not retry when the join fails", func() {
			fake.on("conversations.replies", slackError("not_in_channel"))
			fake.on("conversations.join", slackError("method_not_supported_for_channel_type"))

			Expect(client.FetchThread(ctx, ref)).To(BeEmpty())
			Expect(fake.callsTo("conversations.replies")).To(HaveLen(1))
		})

		It("retries at most once after joining", func() {
			fake.on("conversations.replies", slackError("not_in_channel"))
			fake.on("conversations.join", `{"ok":true,"channel":{"id":"C123"}}`)

			Expect(client.FetchThread(ctx, ref)).To(BeEmpty())
			Expect(fake.callsTo("conversations.replies")).To(HaveLen(2))
			Expect(fake.callsTo("conversations.join")).To(HaveLen(1))
		})

		DescribeTable("returns empty without joining on other errors",
			func(code string) {
				fake.on("conversations.replies", slackError(code))

				Expect(client.FetchThread(ctx, ref)).To(BeEmpty())
				Expect(fake.callsTo("conversations.replies")).To(HaveLen(1))
				Expect(fake.callsTo("conversations.join")).To(BeEmpty())
			},
			Entry("missing scope", "missing_scope"),
			Entry("channel not found", "channel_not_found"),
			Entry("unknown error", "thread_not_found"),
		)

		It("returns empty for a thread with no messages", func() {
			fake.on("conversations.replies", repliesBody())

			Expect(client.FetchThread(ctx, ref)).To(BeEmpty())
			Expect(fake.callsTo("users.info")).To(BeEmpty())
		})

		It("follows pagination cursors", func() {
			fake.on("conversations.replies",
				`{"ok":true,"has_more":true,"messages":[`+message("U1", "page one")+`],"response_metadata":{"next_cursor":"c2"}}`,
				repliesBody(message("U1", "page two")),
			)
			fake.user("U1", userBody("U1", "Ann", "", "ann"))

			msgs := client.FetchThread(ctx, ref)

			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].Text).To(Equal("page two"))
			calls := fake.callsTo("conversations.replies")
			Expect(calls).To(HaveLen(2))
			Expect(calls[1]["cursor"]).To(Equal("c2"))
		})
	})

	Describe("ResolveIdentity", func() {
		DescribeTable("picks the best available name",
			func(body, want string) {
				fake.user("U1", body)
				Expect(client.ResolveIdentity(ctx, "U1")).To(Equal(want))
			},
			Entry("real name", userBody("U1", "Ann Real", "annie", "ann"), "Ann Real"),
			Entry("display name", userBody("U1", "", "annie", "ann"), "annie"),
			Entry("handle", userBody("U1", "", "", "ann"), "ann"),
			Entry("raw id", userBody("U1", "", "", ""), "U1"),
		)

		It("falls back to the id when the lookup fails", func() {
			Expect(client.ResolveIdentity(ctx, "U123")).To(Equal("U123"))
		})
	})

	Describe("JoinChannel", func() {
		It("reports success", func() {
			fake.on("conversations.join", `{"ok":true,"channel":{"id":"C123"}}`)
			Expect(client.JoinChannel(ctx, "C123")).To(BeTrue())
		})

		It("reports failure", func() {
			fake.on("conversations.join", slackError("already_in_channel_error"))
			Expect(client.JoinChannel(ctx, "C123")).To(BeFalse())
		})
	})

	Describe("PostReply", func() {
		It("posts in the thread with unfurling disabled", func() {
			fake.on("chat.postMessage", `{"ok":true,"channel":"C123","ts":"1234567890.999999"}`)

			Expect(client.PostReply(ctx, "C123", "1234567890.123456", "Test message")).To(BeTrue())

			calls := fake.callsTo("chat.postMessage")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0]).To(HaveKeyWithValue("channel", "C123"))
			Expect(calls[0]).To(HaveKeyWithValue("thread_ts", "1234567890.123456"))
			Expect(calls[0]).To(HaveKeyWithValue("text", "Test message"))
			Expect(calls[0]).To(HaveKeyWithValue("unfurl_links", "false"))
			Expect(calls[0]).To(HaveKeyWithValue("unfurl_media", "false"))
		})

		It("reports failure without panicking", func() {
			fake.on("chat.postMessage", slackError("channel_not_found"))
			Expect(client.PostReply(ctx, "C123", "1234567890.123456", "Test message")).To(BeFalse())
		})
	})

	Describe("OpenForm", func() {
		It("accepts an opened modal", func() {
			fake.on("views.open", `{"ok":true,"view":{"id":"V1"}}`)

			result := client.OpenForm(ctx, "trigger123", chat.GlobalShortcutView())

			Expect(result.Accepted).To(BeTrue())
			Expect(result.StatusCode).To(Equal(http.StatusOK))
			Expect(result.RawResponse).To(BeEmpty())
			Expect(fake.callsTo("views.open")[0]["trigger_id"]).To(Equal("trigger123"))
		})

		It("passes the slack error through", func() {
			fake.on("views.open", slackError("expired_trigger_id"))

			result := client.OpenForm(ctx, "trigger123", chat.GlobalShortcutView())

			Expect(result.Accepted).To(BeFalse())
			Expect(result.StatusCode).To(Equal(http.StatusBadRequest))
			var body map[string]any
			Expect(json.Unmarshal([]byte(result.RawResponse), &body)).To(Succeed())
			Expect(body["ok"]).To(BeFalse())
			Expect(body["error"]).To(Equal("expired_trigger_id"))
		})
	})
})
