package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLinePrompterAsksAndReadsText(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("Title\r\nAlice,Bob\nline one\nline two\n"), &out)
	title, err := p.Ask("Title: ")
	if err != nil || title != "Title" {
		t.Fatalf("Ask = %q, %v", title, err)
	}
	authors, err := p.Ask("authors: ")
	if err != nil || authors != "Alice,Bob" {
		t.Fatalf("Ask = %q, %v", authors, err)
	}
	text, err := p.ReadText("Text:")
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if text != "line one\nline two\n" {
		t.Fatalf("text = %q", text)
	}
	if got := out.String(); got != "Title: authors: Text:\n" {
		t.Fatalf("prompts written = %q", got)
	}
}

func TestLinePrompterLastLineWithoutNewline(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("7"), &bytes.Buffer{})
	if got, err := p.Ask("q: "); err != nil || got != "7" {
		t.Fatalf("Ask = %q, %v", got, err)
	}
	if _, err := p.Ask("q: "); err == nil {
		t.Fatalf("expected error once input is exhausted")
	}
}

func typeRunes(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestLineModelSubmitsOnEnter(t *testing.T) {
	var m tea.Model = newLineModel("Title: ")
	m = typeRunes(m, "Cleanup")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lm := m.(lineModel)
	if !lm.done || lm.cancelled {
		t.Fatalf("expected done state, got %+v", lm)
	}
	if got := lm.input.Value(); got != "Cleanup" {
		t.Fatalf("value = %q", got)
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestLineModelCancel(t *testing.T) {
	var m tea.Model = newLineModel("Title: ")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.(lineModel).cancelled {
		t.Fatalf("expected cancelled state")
	}
}

func TestTextModelFinishesOnCtrlD(t *testing.T) {
	var m tea.Model = newTextModel("Text:")
	m = typeRunes(m, "first")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeRunes(m, "second")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	tm := m.(textModel)
	if !tm.done {
		t.Fatalf("expected done state")
	}
	if got := tm.Value(); got != "first\nsecond\n" {
		t.Fatalf("value = %q", got)
	}
}

func TestTextModelKeepsLongText(t *testing.T) {
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	var m tea.Model = newTextModel("Text:")
	m = typeRunes(m, strings.Join(lines, "\n"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeRunes(m, "tail")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	want := strings.Join(lines, "\n") + "\ntail\n"
	if got := m.(textModel).Value(); got != want {
		t.Fatalf("kept %d of %d lines", strings.Count(got, "\n"), strings.Count(want, "\n"))
	}
}

func TestLineModelKeepsLongAnswer(t *testing.T) {
	long := strings.Repeat("1,", 400) + "1"
	var m tea.Model = newLineModel("Proposals to distribute: ")
	m = typeRunes(m, long)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(lineModel).input.Value(); got != long {
		t.Fatalf("kept %d of %d characters", len(got), len(long))
	}
}

func TestScripted(t *testing.T) {
	s := &Scripted{Answers: []string{"a"}, Text: "body"}
	if got, _ := s.Ask("one"); got != "a" {
		t.Fatalf("Ask = %q", got)
	}
	if _, err := s.Ask("two"); err == nil {
		t.Fatalf("expected error when answers run out")
	}
	if got, _ := s.ReadText("text"); got != "body" {
		t.Fatalf("ReadText = %q", got)
	}
	if len(s.Asked) != 3 {
		t.Fatalf("asked = %v", s.Asked)
	}
}
