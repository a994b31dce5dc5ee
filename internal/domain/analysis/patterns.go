package analysis

import "strings"

// Detector recognizes one pattern family in a parsed file. Implementations
// must be pure: same structure and content in, same patterns out.
type Detector interface {
	Name() string
	Detect(structure *Structure, content []byte) []Pattern
}

// Registry holds the detectors to run against every file. Detectors are
// registered by explicit construction, not by name lookup.
type Registry struct {
	detectors []Detector
}

// NewRegistry creates a registry with the given detectors.
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// DefaultRegistry returns the built-in detector set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		interfaceDetector{},
		errorWrapDetector{},
		concurrencyDetector{},
		tableTestDetector{},
		constructorInjectionDetector{},
		contextDetector{},
	)
}

// Detect runs every registered detector and concatenates the findings.
func (r *Registry) Detect(structure *Structure, content []byte) []Pattern {
	var out []Pattern
	for _, d := range r.detectors {
		out = append(out, d.Detect(structure, content)...)
	}
	return out
}

// interfaceDetector flags files that define abstraction boundaries.
type interfaceDetector struct{}

func (interfaceDetector) Name() string { return "interface-abstraction" }

func (d interfaceDetector) Detect(structure *Structure, _ []byte) []Pattern {
	count := 0
	for _, s := range structure.Symbols {
		if s.Kind == "interface" {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	conf := 0.7
	if count > 1 {
		conf = 0.9
	}
	return []Pattern{{Name: d.Name(), Category: "design", Confidence: conf}}
}

// errorWrapDetector looks for explicit error wrapping and sentinel checks.
type errorWrapDetector struct{}

func (errorWrapDetector) Name() string { return "error-wrapping" }

func (d errorWrapDetector) Detect(_ *Structure, content []byte) []Pattern {
	text := string(content)
	hits := strings.Count(text, "%w") +
		strings.Count(text, "errors.Is(") +
		strings.Count(text, "errors.As(") +
		strings.Count(text, "raise ") // python re-raise counts as error discipline too
	if hits == 0 {
		return nil
	}
	return []Pattern{{Name: d.Name(), Category: "error-handling", Confidence: confidenceByHits(hits)}}
}

// concurrencyDetector flags goroutine/channel or async usage.
type concurrencyDetector struct{}

func (concurrencyDetector) Name() string { return "concurrency" }

func (d concurrencyDetector) Detect(_ *Structure, content []byte) []Pattern {
	text := string(content)
	hits := strings.Count(text, "go func") +
		strings.Count(text, "chan ") +
		strings.Count(text, "sync.") +
		strings.Count(text, "async def") +
		strings.Count(text, "await ") +
		strings.Count(text, "Promise.")
	if hits == 0 {
		return nil
	}
	return []Pattern{{Name: d.Name(), Category: "concurrency", Confidence: confidenceByHits(hits)}}
}

// tableTestDetector recognizes table-driven test files.
type tableTestDetector struct{}

func (tableTestDetector) Name() string { return "table-driven-tests" }

func (d tableTestDetector) Detect(structure *Structure, content []byte) []Pattern {
	text := string(content)
	if !strings.Contains(text, "t.Run(") && !strings.Contains(text, "parametrize") {
		return nil
	}
	hasTestSymbol := false
	for _, s := range structure.Symbols {
		if strings.HasPrefix(s.Name, "Test") || strings.HasPrefix(s.Name, "test_") {
			hasTestSymbol = true
			break
		}
	}
	if !hasTestSymbol {
		return nil
	}
	return []Pattern{{Name: d.Name(), Category: "testing", Confidence: 0.8}}
}

// constructorInjectionDetector flags constructor functions that take
// collaborator arguments, the dependency-injection idiom.
type constructorInjectionDetector struct{}

func (constructorInjectionDetector) Name() string { return "dependency-injection" }

func (d constructorInjectionDetector) Detect(structure *Structure, content []byte) []Pattern {
	text := string(content)
	count := 0
	for _, s := range structure.Symbols {
		if s.Kind != "function" {
			continue
		}
		if strings.HasPrefix(s.Name, "New") || strings.HasPrefix(s.Name, "__init__") {
			count++
		}
	}
	if count == 0 || (!strings.Contains(text, "return &") && !strings.Contains(text, "self.")) {
		return nil
	}
	return []Pattern{{Name: d.Name(), Category: "design", Confidence: 0.6}}
}

// contextDetector flags context.Context plumbing on blocking operations.
type contextDetector struct{}

func (contextDetector) Name() string { return "context-propagation" }

func (d contextDetector) Detect(_ *Structure, content []byte) []Pattern {
	hits := strings.Count(string(content), "ctx context.Context")
	if hits == 0 {
		return nil
	}
	return []Pattern{{Name: d.Name(), Category: "design", Confidence: confidenceByHits(hits)}}
}

func confidenceByHits(hits int) float64 {
	switch {
	case hits >= 5:
		return 0.9
	case hits >= 2:
		return 0.75
	default:
		return 0.5
	}
}
