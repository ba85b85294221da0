package analysis

import "strings"

// Prompt is the instruction pair sent to a backend. Chat backends receive
// System and User separately; completion backends receive Combined().
type Prompt struct {
	System string
	User   string
}

// Combined joins both parts for backends that take a single text.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

const systemPrompt = `Eres "Grounded Growth", un asistente de IA empático y constructivo especializado en crecimiento personal.
Tu objetivo es ayudar al usuario a reflexionar sobre sus entradas de diario en relación con sus metas personales.

Instrucciones:
- Analiza la entrada de diario proporcionada con empatía y sin juzgar
- Conecta los sentimientos y eventos de la entrada con las metas del usuario
- Ofrece 1-2 insights o patrones específicos que observes
- Sugiere 1 acción pequeña, concreta y realizable que el usuario podría tomar
- Usa un tono de apoyo, cálido y alentador
- Tu respuesta debe ser en español
- Formatea tu respuesta usando HTML simple: <h4> para títulos, <p> para párrafos, <ul> y <li> para listas, <strong> para énfasis
- Mantén la respuesta entre 200-400 palabras`

const (
	goalsHeading = "**Metas del Usuario:**"
	entryHeading = "**Entrada de Diario:**"
	closingAsk   = "Por favor, analiza esta entrada considerando las metas del usuario y proporciona insights constructivos."
)

// BuildPrompt renders the entry and goals into a Prompt. Same inputs, same
// output. The goals block is left out entirely when there are no goals.
func BuildPrompt(entryText string, goals []string) Prompt {
	var b strings.Builder

	if block := goalsBlock(goals); block != "" {
		b.WriteString(goalsHeading)
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	b.WriteString(entryHeading)
	b.WriteString("\n\"")
	b.WriteString(entryText)
	b.WriteString("\"\n\n")
	b.WriteString(closingAsk)

	return Prompt{System: systemPrompt, User: b.String()}
}

// goalsBlock renders one "- title" line per non-blank goal.
func goalsBlock(goals []string) string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			lines = append(lines, "- "+g)
		}
	}
	return strings.Join(lines, "\n")
}
