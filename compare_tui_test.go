package main

import (
	"reflect"
	"strings"
	"testing"

	"catfill/internal/suggest"
	"catfill/internal/usercfg"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestCompareModel(t *testing.T) compareModel {
	t.Helper()
	a := testApp(t)
	return initialCompareModel(a, "Whole Milk Organic", "Milc Whole")
}

func TestCompareModel_Init_SmokeTest(t *testing.T) {
	m := newTestCompareModel(t)

	if cmd := m.Init(); cmd == nil {
		t.Error("Init() should return a command")
	}
	if m.focus != focusCleaned {
		t.Errorf("cleaned field should start focused, got %d", m.focus)
	}

	want := []suggest.Suggestion{
		{Kind: suggest.Fix, From: "Milc", To: "Milk"},
		{Kind: suggest.Add, To: "Organic", Count: 1},
	}
	if !reflect.DeepEqual(m.result.Suggestions, want) {
		t.Errorf("initial suggestions = %+v, want %+v", m.result.Suggestions, want)
	}
	if m.status != "" {
		t.Errorf("status should start empty, got %q", m.status)
	}
}

func TestCompareModel_EnterAppliesSuggestion(t *testing.T) {
	m := newTestCompareModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(compareModel)
	if cmd == nil {
		t.Fatal("enter should return an apply command")
	}
	if !m.applying {
		t.Error("model should be applying after enter")
	}

	// A second enter while applying is ignored.
	again, cmd2 := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd2 != nil {
		t.Error("enter while applying should be ignored")
	}
	m = again.(compareModel)

	msg := cmd()
	applied, ok := msg.(appliedMsg)
	if !ok {
		t.Fatalf("apply command returned %T", msg)
	}
	if applied.cleaned != "Milk Whole" {
		t.Errorf("applied cleaned = %q, want %q", applied.cleaned, "Milk Whole")
	}

	updated, _ = m.Update(msg)
	m = updated.(compareModel)
	if m.applying {
		t.Error("applying should be cleared once the result arrives")
	}
	if m.cleaned() != "Milk Whole" {
		t.Errorf("cleaned field = %q", m.cleaned())
	}
	want := []suggest.Suggestion{{Kind: suggest.Add, To: "Organic", Count: 1}}
	if !reflect.DeepEqual(m.result.Suggestions, want) {
		t.Errorf("suggestions after apply = %+v", m.result.Suggestions)
	}
	if m.status != "0 new, 1 resolved" {
		t.Errorf("status = %q", m.status)
	}
}

func TestCompareModel_EnterUsesPendingEdit(t *testing.T) {
	m := newTestCompareModel(t)

	// An edit whose debounce tick has not fired yet.
	m.inputs[focusCleaned].SetValue("Milk Whole Organc")
	m.seq++

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(compareModel)
	if cmd == nil {
		t.Fatal("enter should return an apply command")
	}
	want := []suggest.Suggestion{{Kind: suggest.Fix, From: "Organc", To: "Organic"}}
	if !reflect.DeepEqual(m.result.Suggestions, want) {
		t.Errorf("suggestions at enter = %+v, want %+v", m.result.Suggestions, want)
	}

	applied, ok := cmd().(appliedMsg)
	if !ok {
		t.Fatal("apply command should return appliedMsg")
	}
	if applied.cleaned != "Milk Whole Organic" {
		t.Errorf("applied cleaned = %q, want %q", applied.cleaned, "Milk Whole Organic")
	}
}

func TestCompareModel_EditDuringApplyWins(t *testing.T) {
	m := newTestCompareModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(compareModel)
	msg := cmd()

	m.inputs[focusCleaned].SetValue("Milc Whole Fresh")
	updated, _ = m.Update(msg)
	m = updated.(compareModel)

	if m.cleaned() != "Milc Whole Fresh" {
		t.Errorf("cleaned = %q, typed text should be kept", m.cleaned())
	}
	if m.applying {
		t.Error("applying should be cleared")
	}
}

func TestCompareModel_DebouncedRecompute(t *testing.T) {
	m := newTestCompareModel(t)
	before := m.result

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(compareModel)
	if cmd == nil {
		t.Fatal("typing should schedule a recompute")
	}
	if m.seq != 1 {
		t.Fatalf("seq = %d, want 1", m.seq)
	}
	if m.cleaned() == "Milc Whole" {
		t.Fatal("keystroke should reach the focused input")
	}
	if !reflect.DeepEqual(m.result, before) {
		t.Error("result should not change before the debounce fires")
	}

	updated, _ = m.Update(recomputeMsg{seq: 0})
	m = updated.(compareModel)
	if !reflect.DeepEqual(m.result, before) {
		t.Error("stale tick should be ignored")
	}

	updated, _ = m.Update(recomputeMsg{seq: 1})
	m = updated.(compareModel)
	want := m.app.compare(m.original(), m.cleaned())
	if !reflect.DeepEqual(m.result, want) {
		t.Errorf("result after tick = %+v, want %+v", m.result, want)
	}
}

func TestCompareModel_Update_SmokeTest(t *testing.T) {
	m := newTestCompareModel(t)

	testCases := []struct {
		name string
		msg  tea.Msg
	}{
		{"Key message - up arrow", tea.KeyMsg{Type: tea.KeyUp}},
		{"Key message - down arrow", tea.KeyMsg{Type: tea.KeyDown}},
		{"Key message - tab", tea.KeyMsg{Type: tea.KeyTab}},
		{"Key message - highlight toggle", tea.KeyMsg{Type: tea.KeyCtrlT}},
		{"Key message - backspace", tea.KeyMsg{Type: tea.KeyBackspace}},
		{"Window size message", tea.WindowSizeMsg{Width: 80, Height: 24}},
		{"Search done message", searchDoneMsg{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Update() panicked with message %v: %v", tc.msg, r)
				}
			}()
			updated, _ := m.Update(tc.msg)
			if _, ok := updated.(compareModel); !ok {
				t.Fatalf("Update returned %T", updated)
			}
		})
	}
}

func TestCompareModel_Navigation(t *testing.T) {
	m := newTestCompareModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(compareModel)
	if m.cursor != 1 {
		t.Errorf("cursor after down = %d, want 1", m.cursor)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(compareModel)
	if m.cursor != 1 {
		t.Errorf("cursor should stop at the last suggestion, got %d", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(compareModel)
	if m.focus != focusOriginal {
		t.Errorf("tab should move focus to the original field")
	}

	highlight := m.highlight
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(compareModel)
	if m.highlight == highlight {
		t.Error("ctrl+t should toggle highlighting")
	}
}

func TestCompareModel_View_SmokeTest(t *testing.T) {
	m := newTestCompareModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(compareModel)

	view := m.View()
	for _, want := range []string{"Fix: Milc → Milk", "+ Organic", "enter apply"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	eq := initialCompareModel(m.app, "Milk Whole", "Whole Milk")
	if !strings.Contains(eq.View(), "Same words") {
		t.Errorf("equivalent names should say so:\n%s", eq.View())
	}
}

func TestCompareModel_QuitSavesPreferences(t *testing.T) {
	m := newTestCompareModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should return tea.Quit")
	}

	prefs := usercfg.GetUIPrefs()
	if prefs.LastOriginal != "Whole Milk Organic" || prefs.LastCleaned != "Milc Whole" {
		t.Errorf("preferences not saved: %+v", prefs)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"hello", 0, "hello"},
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.w); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}
