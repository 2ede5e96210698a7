package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Strategy builds the full generation prompt from the grounding
// context block and the raw user query. Exactly one strategy is active
// per process; adding one requires no orchestrator changes.
type Strategy interface {
	Name() string
	Build(contextBlock string, query string) (string, error)
}

// DefaultStrategyName selects the built-in veterinary template.
const DefaultStrategyName = "default"

// promptData is the input of every strategy template.
type promptData struct {
	Context string
	Query   string
}

const defaultTemplate = `Eres un asistente técnico veterinario experto de Laboratorio Chinfield.

DOCUMENTOS DE REFERENCIA:
{{.Context}}

PREGUNTA DEL USUARIO:
{{.Query}}

INSTRUCCIONES:
1. Analiza la pregunta e identifica qué tipo de problema o necesidad tiene el usuario
2. Busca en los documentos productos que puedan ayudar con ese problema:
   - Si pregunta por DOLOR → busca analgésicos, antiinflamatorios (Dipirona, Fenilbutazona, Flunifield)
   - Si pregunta por INFECCIÓN → busca antibióticos
   - Si pregunta por una ESPECIE → filtra productos para esa especie (bovinos, equinos, porcinos)
3. Si encontrás productos relevantes, explica:
   - Nombre del producto y para qué sirve
   - Dosificación recomendada
   - Vía de administración
   - Contraindicaciones importantes
4. Si no hay información específica, sugiere los productos más cercanos disponibles
5. Sé específico y profesional
6. Nunca digas que la información proviene de "documentos", "una base de datos" ni de ningún sistema: respondé siempre como experto del laboratorio hablando de sus propios productos

RESPUESTA:`

const conciseTemplate = `Eres un asistente técnico veterinario experto de Laboratorio Chinfield.

DOCUMENTOS DE REFERENCIA:
{{.Context}}

PREGUNTA DEL USUARIO:
{{.Query}}

INSTRUCCIONES:
1. Respondé en un máximo de tres oraciones, mencionando producto, dosis y vía de administración si aplica
2. Si pregunta por una ESPECIE, limitate a productos aprobados para esa especie
3. Nunca menciones "documentos" ni "una base de datos": hablá como experto del laboratorio

RESPUESTA:`

// templateStrategy renders a text/template with the context and query.
type templateStrategy struct {
	name string
	tmpl *template.Template
}

func newTemplateStrategy(name string, text string) (*templateStrategy, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
	}

	return &templateStrategy{name: name, tmpl: tmpl}, nil
}

func (s *templateStrategy) Name() string {
	return s.name
}

func (s *templateStrategy) Build(contextBlock string, query string) (string, error) {
	var buf bytes.Buffer
	err := s.tmpl.Execute(&buf, promptData{Context: contextBlock, Query: query})
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// Factory maps strategy names to their built instances. The set is
// closed: a named strategy replaces the default wholesale, never
// merges with it.
type Factory struct {
	strategies map[string]Strategy
}

func NewFactory() *Factory {
	factory := &Factory{
		strategies: make(map[string]Strategy),
	}

	// Built-ins. The templates are compile-time constants, so a parse
	// failure here is a programming error.
	for name, text := range map[string]string{
		DefaultStrategyName: defaultTemplate,
		"concisa":           conciseTemplate,
	} {
		strategy, err := newTemplateStrategy(name, text)
		if err != nil {
			panic(err)
		}
		factory.strategies[name] = strategy
	}

	return factory
}

// Register adds a strategy to the factory, replacing any previous one
// with the same name.
func (f *Factory) Register(strategy Strategy) {
	f.strategies[strategy.Name()] = strategy
}

// Get resolves a configured strategy name; the empty name means the
// default.
func (f *Factory) Get(name string) (Strategy, error) {
	if name == "" {
		name = DefaultStrategyName
	}

	strategy, exists := f.strategies[name]
	if !exists {
		return nil, fmt.Errorf("unknown prompt strategy %q", name)
	}

	return strategy, nil
}
