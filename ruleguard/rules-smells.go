package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Dos "guard if" seguidos con el mismo return => combinables con ||
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)
}

// classification: el tipo de fallo de un backend se decide solo en infra/llm.
// Fuera de ahí se usa llm.KindOf o el Outcome del adapter.
func classification(m dsl.Matcher) {
	m.Match(
		`strings.Contains($err.Error(), $_)`,
		`strings.Contains(strings.ToLower($err.Error()), $_)`,
		`strings.HasPrefix($err.Error(), $_)`,
	).
		Where(m["err"].Type.Is("error") && !m.File().PkgPath.Matches(`/internal/infra/llm$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`do not classify errors by message outside internal/infra/llm; use llm.KindOf`)

	// Marcadores de texto en el contenido generado (la vieja frase "simulación")
	m.Match(`strings.Contains($s, "simulación")`, `strings.Contains($s, "simulacion")`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`do not infer the outcome from generated text; use Outcome.Status`)
}

// contextual: las consultas fuera de tests llevan el ctx del request.
func contextual(m dsl.Matcher) {
	m.Match(`$db.Exec($*_)`, `$db.Query($*_)`, `$db.QueryRow($*_)`).
		Where(m["db"].Type.Is(`*sql.DB`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`use the Context variant so cancellation reaches the driver`)
}

// logging: los paquetes internos reciben un *zap.Logger.
func logging(m dsl.Matcher) {
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Fatalf($*_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`use the injected zap logger`)
}
