package messaging

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
)

const ConnectActionID = "connect_google_calendar"

// PrepContent is the material rendered into a prep message.
type PrepContent struct {
	Title     string
	Summary   string
	Notes     []string
	Questions []string
	Link      string
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

// PrepBlocks renders a prep message with optional notes, questions and link sections.
func PrepBlocks(c PrepContent) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(markdown(fmt.Sprintf("*Meeting Prep for: %s*", c.Title)), nil, nil),
		slack.NewDividerBlock(),
	}
	if s := strings.TrimSpace(c.Summary); s != "" {
		blocks = append(blocks, slack.NewSectionBlock(markdown("*Glean Summary:*\n"+s), nil, nil))
	}
	if len(c.Notes) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdown("*Prep Notes:*\n"+bullets(c.Notes)), nil, nil))
	}
	if len(c.Questions) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdown("*Questions to Consider:*\n"+bullets(c.Questions)), nil, nil))
	}
	if c.Link != "" {
		blocks = append(blocks, slack.NewSectionBlock(markdown(fmt.Sprintf("<%s|Open in Google Calendar>", c.Link)), nil, nil))
	}
	return blocks
}

// ConnectBlocks renders the welcome prompt with a button opening authURL.
func ConnectBlocks(authURL string) []slack.Block {
	button := slack.NewButtonBlockElement(ConnectActionID, "connect",
		slack.NewTextBlockObject(slack.PlainTextType, "Connect Google Calendar", false, false))
	button.URL = authURL
	button.Style = slack.StylePrimary
	return []slack.Block{
		slack.NewSectionBlock(markdown("Hey there! To get started, I need access to your Google Calendar."), nil, nil),
		slack.NewActionBlock("connect_actions", button),
	}
}

func bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(item)
	}
	return b.String()
}
