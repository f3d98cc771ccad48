package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Screen is the tview chat window: the conversation view on top and a
// message input below. Network-side updates go through Refresh, which is
// safe to call from any goroutine.
type Screen struct {
	App      *tview.Application
	Layout   *tview.Flex
	conv     *Conversation
	view     *tview.TextView
	input    *tview.TextArea
	OnSubmit func(contents string) error
}

func NewScreen(conv *Conversation, roomName string) *Screen {
	s := &Screen{
		App:  tview.NewApplication(),
		conv: conv,
	}

	s.view = tview.NewTextView()
	s.view.SetScrollable(true).
		SetBorder(true).
		SetTitle(fmt.Sprintf("[ %s ]", roomName))

	s.input = tview.NewTextArea().
		SetPlaceholder("Type your message here...")
	s.input.SetBorder(true)

	s.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			contents := s.input.GetText()
			if contents == "" {
				return nil
			}
			if s.OnSubmit != nil {
				if err := s.OnSubmit(contents); err != nil {
					s.view.SetText(s.conv.Render() + "\n(send failed: " + err.Error() + ")")
					return nil
				}
			}
			s.input.SetText("", false)
			// Already on the UI goroutine here, so no queueing.
			s.view.SetText(s.conv.Render())
			return nil
		}
		return event
	})

	s.Layout = tview.NewFlex()
	s.Layout.SetDirection(tview.FlexRow).
		AddItem(s.view, 0, 1, false).
		AddItem(s.input, 5, 0, true)

	s.App.SetRoot(s.Layout, true)
	s.App.SetFocus(s.input)
	return s
}

// Refresh re-renders the conversation from outside the UI goroutine.
func (s *Screen) Refresh() {
	s.App.QueueUpdateDraw(func() {
		s.view.SetText(s.conv.Render())
		s.view.ScrollToEnd()
	})
}
