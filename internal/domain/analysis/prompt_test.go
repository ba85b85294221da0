package analysis

import (
	"strings"
	"testing"
)

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	goals := []string{"Hacer ejercicio", "Leer"}
	a := BuildPrompt(entry, goals)
	b := BuildPrompt(entry, goals)
	if a != b {
		t.Fatal("same inputs must yield the same prompt")
	}
	if a.System != systemPrompt {
		t.Errorf("unexpected system part")
	}
}

func TestBuildPrompt_GoalsBlock(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("Entrada de prueba", []string{"Hacer ejercicio", "  ", "Leer"})

	want := goalsHeading + "\n- Hacer ejercicio\n- Leer\n\n" + entryHeading + "\n\"Entrada de prueba\"\n\n" + closingAsk
	if p.User != want {
		t.Errorf("User =\n%q\nwant\n%q", p.User, want)
	}
}

func TestBuildPrompt_NoGoals_OmitsBlock(t *testing.T) {
	t.Parallel()

	for _, goals := range [][]string{nil, {}, {" ", ""}} {
		p := BuildPrompt("Entrada", goals)
		if strings.Contains(p.User, goalsHeading) {
			t.Errorf("goals heading must be omitted for %q: %q", goals, p.User)
		}
		if !strings.HasPrefix(p.User, entryHeading) {
			t.Errorf("user part should start with the entry heading: %q", p.User)
		}
	}
}

func TestPrompt_Combined(t *testing.T) {
	t.Parallel()

	p := Prompt{System: "S", User: "U"}
	if got := p.Combined(); got != "S\n\nU" {
		t.Errorf("Combined() = %q", got)
	}
}
