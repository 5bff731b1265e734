package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/egoavara/bitrix-console/internal/marketplace"
)

func TestAskQueryLineInput(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultQuery string
		want         string
		wantErr      error
	}{
		{"answer", "bitrix24\n", "notamedia", "bitrix24", nil},
		{"blank uses default", "\n", "notamedia", "notamedia", nil},
		{"eof uses default", "", "notamedia", "notamedia", nil},
		{"retries blank answers", "  \n\nhttp://x.test/list/\n", "", "http://x.test/list/", nil},
		{"gives up after max attempts", strings.Repeat("\n", marketplace.MaxQueryAttempts+1), "", "", marketplace.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := AskQuery(LineAsker(strings.NewReader(tt.input), &out, tt.defaultQuery), tt.defaultQuery)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AskQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAskQueryStopsAfterMaxAttempts(t *testing.T) {
	calls := 0
	ask := func(string, int) (string, error) {
		calls++
		return " ", nil
	}

	if _, err := AskQuery(ask, ""); !errors.Is(err, marketplace.ErrEmptyQuery) {
		t.Fatalf("error = %v", err)
	}
	if calls != marketplace.MaxQueryAttempts {
		t.Errorf("asked %d times, want %d", calls, marketplace.MaxQueryAttempts)
	}
}

func TestAskQueryPassesAskerError(t *testing.T) {
	ask := func(string, int) (string, error) {
		return "", ErrPromptCancelled
	}
	if _, err := AskQuery(ask, "x"); !errors.Is(err, ErrPromptCancelled) {
		t.Errorf("error = %v", err)
	}
}

func TestQueryModelEnterUsesPlaceholder(t *testing.T) {
	m := NewQueryModel("notamedia", "", 1)

	final, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	qm := final.(QueryModel)
	if !qm.IsConfirmed() || qm.Value() != "notamedia" {
		t.Errorf("confirmed=%v value=%q", qm.IsConfirmed(), qm.Value())
	}
}

func TestQueryModelEscCancels(t *testing.T) {
	m := NewQueryModel("notamedia", "", 1)

	final, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if final.(QueryModel).IsConfirmed() {
		t.Error("esc should not confirm")
	}
}

func TestBarDisabledWritesNothing(t *testing.T) {
	var out bytes.Buffer
	b := NewBar(&out, false)
	b.Start(2)
	b.SetMessage("installing")
	b.Advance()
	b.Clear()

	if out.Len() != 0 {
		t.Errorf("disabled bar wrote %q", out.String())
	}
	if b.Current() != 1 {
		t.Errorf("Current = %d", b.Current())
	}
}

func TestBarRendersCounter(t *testing.T) {
	var out bytes.Buffer
	b := NewBar(&out, true)
	b.Start(4)
	b.Advance()

	if !strings.Contains(out.String(), "1/4") {
		t.Errorf("output %q does not contain 1/4", out.String())
	}
}
