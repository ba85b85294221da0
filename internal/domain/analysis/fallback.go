package analysis

import (
	"fmt"
	"html"
	"strings"
)

const genericGoals = "tus objetivos personales"

// goalsInline renders goals as a comma-joined list of <strong> items, or the
// generic phrase when there are none. Titles are HTML-escaped.
func goalsInline(goals []string) string {
	items := make([]string, 0, len(goals))
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			items = append(items, "<strong>"+html.EscapeString(g)+"</strong>")
		}
	}
	if len(items) == 0 {
		return genericGoals
	}
	return strings.Join(items, ", ")
}

const localTemplate = `<h4>Análisis Básico de tu Reflexión</h4>
<p>He procesado tu entrada de manera local. Aunque no puedo acceder a servicios de IA avanzados en este momento, puedo ofrecerte algunas reflexiones basadas en %s.</p>
<h4>Observaciones Generales</h4>
<p>Tu capacidad de reflexionar por escrito es un excelente hábito para el crecimiento personal. El simple acto de poner tus pensamientos en palabras ya es un paso valioso hacia una mayor autoconciencia.</p>
<h4>Sugerencia Práctica</h4>
<ul>
<li>Continúa escribiendo regularmente. La consistencia en la reflexión personal es más valiosa que la perfección de cada entrada individual.</li>
<li>Considera revisar tus entradas anteriores semanalmente para identificar patrones y progreso.</li>
</ul>
<p><strong>Nota:</strong> Este es un análisis básico local. Para obtener insights más profundos y personalizados, configura una API key de OpenAI (OPENAI_API_KEY) o Gemini (GEMINI_API_KEY) en las variables de entorno del servidor.</p>`

// LocalFallback returns the deterministic analysis used when no backend
// produced content. Pure: no I/O, no randomness.
func LocalFallback(goals []string) string {
	return fmt.Sprintf(localTemplate, goalsInline(goals))
}

const openAIPlaceholderTemplate = `<h4>Análisis Inteligente de tu Reflexión</h4>
<p>Gracias por compartir tus pensamientos. He analizado tu entrada y encuentro conexiones interesantes con %s.</p>
<h4>Insights Identificados</h4>
<p>Tu capacidad de introspección es notable. Los sentimientos y experiencias que compartes muestran un proceso de crecimiento personal auténtico.</p>
<h4>Recomendación Específica</h4>
<ul>
<li>Te sugiero dedicar 10 minutos mañana por la mañana a escribir sobre cómo te gustaría aplicar lo que has reflexionado hoy.</li>
</ul>
<p><strong>Nota:</strong> Esta es una simulación de OpenAI GPT (%s). Para obtener análisis más personalizados y profundos, configura tu API key de OpenAI.</p>`

const geminiPlaceholderTemplate = `<h4>Reflexiones sobre tu día</h4>
<p>Gracias por compartir tu reflexión. He notado varios elementos interesantes en tu entrada que se relacionan con %s.</p>
<h4>Patrones Observados</h4>
<p>Veo que tu entrada refleja un proceso de auto-reflexión muy valioso. Los sentimientos que describes muestran tu capacidad de ser honesto contigo mismo.</p>
<h4>Sugerencia Práctica</h4>
<ul>
<li>Para los próximos días, considera dedicar 5 minutos cada mañana a visualizar cómo quieres abordar las situaciones relacionadas con tus metas.</li>
</ul>
<p><strong>Nota:</strong> Esta es una simulación (%s). Para obtener análisis personalizados reales con IA, verifica tu configuración de Gemini.</p>`

// placeholder renders the backend's own degraded text with the reason embedded.
func placeholder(p Provider, goals []string, reason string) string {
	tmpl := geminiPlaceholderTemplate
	if p == ProviderOpenAI {
		tmpl = openAIPlaceholderTemplate
	}
	return fmt.Sprintf(tmpl, goalsInline(goals), html.EscapeString(reason))
}
