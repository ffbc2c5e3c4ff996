package chat_test

import (
	"github.com/slack-go/slack"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/threadrelay/internal/service/chat"
)

func inputBlocks(view slack.ModalViewRequest) map[string]string {
	out := make(map[string]string)
	for _, block := range view.Blocks.BlockSet {
		input, ok := block.(*slack.InputBlock)
		if !ok {
			continue
		}
		element, ok := input.Element.(*slack.PlainTextInputBlockElement)
		Expect(ok).To(BeTrue(), "input %s is not a plain text input", input.BlockID)
		out[input.BlockID] = element.ActionID
	}
	return out
}

var _ = Describe("Views", func() {
	It("builds the global shortcut form with thread and issue inputs", func() {
		view := chat.GlobalShortcutView()

		Expect(view.Type).To(Equal(slack.VTModal))
		Expect(view.CallbackID).To(Equal(chat.CallbackGlobalShortcut))
		Expect(view.PrivateMetadata).To(Equal("{}"))
		Expect(inputBlocks(view)).To(Equal(map[string]string{
			chat.BlockThread: chat.ActionThreadURL,
			chat.BlockIssue:  chat.ActionIssueURL,
		}))
	})

	It("builds the message shortcut form carrying the thread in metadata", func() {
		view := chat.MessageShortcutView("C123", "1234567890.123456")

		Expect(view.CallbackID).To(Equal(chat.CallbackMessageShortcut))
		Expect(inputBlocks(view)).To(Equal(map[string]string{
			chat.BlockIssue: chat.ActionIssueURL,
		}))

		meta, err := chat.DecodeThreadMetadata(view.PrivateMetadata)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta).To(Equal(chat.ThreadMetadata{ChannelID: "C123", ThreadTS: "1234567890.123456"}))
	})

	It("rejects malformed metadata", func() {
		_, err := chat.DecodeThreadMetadata("not json")
		Expect(err).To(HaveOccurred())
	})
})
