package analysis

import "testing"

func TestDefaultRegistryDetectsGoIdioms(t *testing.T) {
	content := []byte(`
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Run(ctx context.Context) error {
	go func() {
		ch := make(chan struct{})
		_ = ch
	}()
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
`)
	structure := &Structure{
		Language: "go",
		Symbols: []Symbol{
			{Name: "Store", Kind: "interface"},
			{Name: "NewService", Kind: "function"},
			{Name: "Run", Kind: "method"},
		},
	}

	patterns := DefaultRegistry().Detect(structure, content)

	found := make(map[string]Pattern)
	for _, p := range patterns {
		found[p.Name] = p
	}
	for _, want := range []string{"interface-abstraction", "error-wrapping", "concurrency", "dependency-injection", "context-propagation"} {
		if _, ok := found[want]; !ok {
			t.Fatalf("expected pattern %s, got %v", want, patterns)
		}
	}
	if _, ok := found["table-driven-tests"]; ok {
		t.Fatal("no test symbols present, table-driven-tests must not fire")
	}
	for name, p := range found {
		if p.Confidence <= 0 || p.Confidence > 1 {
			t.Fatalf("pattern %s confidence out of range: %v", name, p.Confidence)
		}
	}
}

func TestTableTestDetectorNeedsBothMarkerAndTestSymbol(t *testing.T) {
	content := []byte(`func TestThing(t *testing.T) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {})
	}
}`)

	withSymbol := &Structure{Symbols: []Symbol{{Name: "TestThing", Kind: "function"}}}
	patterns := (tableTestDetector{}).Detect(withSymbol, content)
	if len(patterns) != 1 {
		t.Fatalf("expected table-driven-tests to fire, got %v", patterns)
	}

	withoutSymbol := &Structure{Symbols: []Symbol{{Name: "Helper", Kind: "function"}}}
	if patterns := (tableTestDetector{}).Detect(withoutSymbol, content); patterns != nil {
		t.Fatalf("no test symbol, expected nil, got %v", patterns)
	}

	noMarker := []byte("func TestThing(t *testing.T) { check(t) }")
	if patterns := (tableTestDetector{}).Detect(withSymbol, noMarker); patterns != nil {
		t.Fatalf("no subtest marker, expected nil, got %v", patterns)
	}
}

func TestDetectorsStayQuietOnPlainFile(t *testing.T) {
	content := []byte("const answer = 42\n")
	structure := &Structure{Symbols: []Symbol{{Name: "answer", Kind: "type"}}}

	if patterns := DefaultRegistry().Detect(structure, content); len(patterns) != 0 {
		t.Fatalf("expected no patterns in a constant-only file, got %v", patterns)
	}
}

func TestErrorWrapDetectorCountsPythonRaise(t *testing.T) {
	content := []byte("def f():\n    raise ValueError(\"bad\")\n")
	patterns := (errorWrapDetector{}).Detect(&Structure{}, content)
	if len(patterns) != 1 {
		t.Fatalf("expected error-wrapping for raise, got %v", patterns)
	}
	if patterns[0].Confidence != 0.5 {
		t.Fatalf("single hit should score 0.5, got %v", patterns[0].Confidence)
	}
}

func TestConfidenceByHits(t *testing.T) {
	tests := []struct {
		hits int
		want float64
	}{
		{1, 0.5},
		{2, 0.75},
		{4, 0.75},
		{5, 0.9},
		{50, 0.9},
	}
	for _, tt := range tests {
		if got := confidenceByHits(tt.hits); got != tt.want {
			t.Fatalf("confidenceByHits(%d) = %v, want %v", tt.hits, got, tt.want)
		}
	}
}

func TestRegistryIsDeterministic(t *testing.T) {
	content := []byte("go func() {}()\nctx context.Context\n")
	structure := &Structure{Symbols: []Symbol{{Name: "Run", Kind: "function"}}}
	reg := DefaultRegistry()

	first := reg.Detect(structure, content)
	second := reg.Detect(structure, content)
	if len(first) != len(second) {
		t.Fatalf("detector output changed between runs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("detector output changed at %d: %v vs %v", i, first[i], second[i])
		}
	}
}
