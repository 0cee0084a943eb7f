// Package console renders story lines to a terminal and reads player input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Yates-Labs/lehua/internal/story"
	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the column width narration is wrapped to.
const DefaultWidth = 80

var (
	hostColor    = lipgloss.Color("#F780FF") // Bright pink
	speakerColor = lipgloss.Color("#BD93F9") // Purple
	textColor    = lipgloss.Color("#E9E9F4") // Light purple/white
	stageColor   = lipgloss.Color("#6272A4") // Muted purple
	optionColor  = lipgloss.Color("#FF79C6") // Pink
	noticeColor  = lipgloss.Color("#FFB86C") // Orange
	summaryColor = lipgloss.Color("#8BE9FD") // Cyan
	promptColor  = lipgloss.Color("#50FA7B") // Green
)

const headingBorder = "*"

type styles struct {
	host    lipgloss.Style
	speaker lipgloss.Style
	text    lipgloss.Style
	stage   lipgloss.Style
	option  lipgloss.Style
	notice  lipgloss.Style
	heading lipgloss.Style
	summary lipgloss.Style
	prompt  lipgloss.Style
	rule    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, width int) styles {
	return styles{
		host:    r.NewStyle().Foreground(hostColor).Bold(true),
		speaker: r.NewStyle().Foreground(speakerColor).Bold(true),
		text:    r.NewStyle().Foreground(textColor).Width(width),
		stage:   r.NewStyle().Foreground(stageColor).Italic(true),
		option:  r.NewStyle().Foreground(optionColor).PaddingLeft(2),
		notice:  r.NewStyle().Foreground(noticeColor).Italic(true),
		heading: r.NewStyle().Foreground(hostColor).Bold(true).Width(width).Align(lipgloss.Center),
		summary: r.NewStyle().Foreground(summaryColor),
		prompt:  r.NewStyle().Foreground(promptColor),
		rule:    r.NewStyle().Foreground(stageColor),
	}
}

type readResult struct {
	line string
	err  error
}

// Terminal presents story output on a writer and reads lines from a reader.
// It is used by a single play-through at a time.
type Terminal struct {
	out    io.Writer
	in     *bufio.Reader
	width  int
	styles styles

	// pending holds a read that outlived a cancelled prompt.
	pending chan readResult
}

// New creates a terminal over in and out. Colors follow the capabilities of out.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		in:     bufio.NewReader(in),
		width:  DefaultWidth,
		styles: newStyles(lipgloss.NewRenderer(out), DefaultWidth),
	}
}

// Render prints one line styled by its emphasis.
func (t *Terminal) Render(line story.Line) {
	s := t.styles

	switch line.Emphasis {
	case story.EmphasisStage:
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, s.rule.Render(strings.Repeat("─", t.width)))
		fmt.Fprintln(t.out, s.stage.Render(line.Text))
		fmt.Fprintln(t.out, s.rule.Render(strings.Repeat("─", t.width)))
	case story.EmphasisDialogue:
		label := s.speaker
		if line.Speaker == story.SpeakerHost {
			label = s.host
		}
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, label.Render(string(line.Speaker)+":"))
		fmt.Fprintln(t.out, s.text.Render(line.Text))
	case story.EmphasisOption:
		fmt.Fprintln(t.out, s.option.Render(line.Text))
	case story.EmphasisNotice:
		fmt.Fprintln(t.out, s.notice.Render(line.Text))
	case story.EmphasisHeading:
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, s.rule.Render(strings.Repeat(headingBorder, t.width)))
		fmt.Fprintln(t.out, s.heading.Render(line.Text))
		fmt.Fprintln(t.out, s.rule.Render(strings.Repeat(headingBorder, t.width)))
	case story.EmphasisSummary:
		fmt.Fprintln(t.out, s.summary.Render(line.Text))
	default:
		if line.Speaker != story.SpeakerNone {
			t.Render(story.Dialogue(line.Speaker, line.Text))
			return
		}
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, s.text.Render(line.Text))
	}
}

// PromptLine shows prompt and blocks for one line of input without its line ending.
// It returns io.EOF once the input is exhausted and ctx.Err() if ctx ends first.
func (t *Terminal) PromptLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if prompt != "" {
		fmt.Fprint(t.out, t.styles.prompt.Render(prompt))
		if !strings.HasSuffix(prompt, " ") {
			fmt.Fprint(t.out, " ")
		}
	}

	if t.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			line, err := t.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
		t.pending = ch
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case res := <-t.pending:
		t.pending = nil
		line := strings.TrimRight(res.line, "\r\n")
		if res.err != nil {
			// A final line without a newline still counts.
			if errors.Is(res.err, io.EOF) && line != "" {
				return line, nil
			}
			return "", res.err
		}
		return line, nil
	}
}
