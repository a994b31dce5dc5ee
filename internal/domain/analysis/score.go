package analysis

import (
	"math"
	"sort"
	"strings"
)

// Teaching-value weights. Hand-tuned; they must sum to 1 so the score
// stays in [0, 1].
const (
	weightDocs     = 0.30
	weightSweet    = 0.30
	weightPatterns = 0.25
	weightClarity  = 0.15
)

// sweetSpotDensity is the decision-points-per-code-line density considered
// ideal for teaching: enough branching to be interesting, not a thicket.
const sweetSpotDensity = 0.06

// DocumentationCoverage returns the fraction of symbols carrying a doc
// comment. A file with no symbols scores zero, not one: there is nothing
// to teach from it.
func DocumentationCoverage(symbols []Symbol) float64 {
	if len(symbols) == 0 {
		return 0
	}
	documented := 0
	for _, s := range symbols {
		if s.Documented {
			documented++
		}
	}
	return float64(documented) / float64(len(symbols))
}

// ComputeComplexity derives complexity metrics from raw content and the
// extracted symbols. Decision points are counted by branch-keyword
// occurrence, which is deliberately language-coarse.
func ComputeComplexity(content []byte, symbols []Symbol) Complexity {
	lines := strings.Split(string(content), "\n")

	c := Complexity{LineCount: len(lines)}

	depth := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}
		c.CodeLineCount++
		c.DecisionPoints += countDecisionPoints(trimmed)

		depth += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
		if depth < 0 {
			depth = 0
		}
		if depth > c.MaxNesting {
			c.MaxNesting = depth
		}
		// Indentation-based languages never move the brace counter, so fall
		// back to leading whitespace depth there.
		if indent := indentDepth(line); indent > c.MaxNesting {
			c.MaxNesting = indent
		}
	}

	if len(symbols) > 0 {
		span := 0
		for _, s := range symbols {
			if s.EndLine >= s.StartLine {
				span += s.EndLine - s.StartLine + 1
			}
		}
		c.AvgSymbolSpan = float64(span) / float64(len(symbols))
	}

	return c
}

var decisionKeywords = []string{"if ", "if(", "for ", "for(", "while ", "while(", "case ", "elif ", "else if", "switch ", "catch ", "except "}

func countDecisionPoints(line string) int {
	n := 0
	for _, kw := range decisionKeywords {
		n += strings.Count(line, kw)
	}
	return n
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "/*")
}

// indentDepth approximates nesting from leading whitespace, one level per
// four spaces or one tab.
func indentDepth(line string) int {
	spaces := 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			spaces += 4
		default:
			return spaces / 4
		}
	}
	return 0
}

// TeachingValue computes the bounded [0, 1] teaching-value score as a
// weighted sum of documentation coverage, complexity sweetness, pattern
// richness, and structural clarity.
func TeachingValue(docCoverage float64, c Complexity, patterns []Pattern, symbols []Symbol) float64 {
	score := weightDocs*clamp01(docCoverage) +
		weightSweet*complexitySweetness(c) +
		weightPatterns*patternRichness(patterns) +
		weightClarity*structuralClarity(c, symbols)
	return clamp01(score)
}

// complexitySweetness peaks at sweetSpotDensity and decays toward 0 for
// files that are either trivial or branch-dense.
func complexitySweetness(c Complexity) float64 {
	if c.CodeLineCount == 0 {
		return 0
	}
	density := float64(c.DecisionPoints) / float64(c.CodeLineCount)
	distance := math.Abs(density-sweetSpotDensity) / sweetSpotDensity
	return clamp01(1 - distance/3)
}

// patternRichness saturates at five distinct patterns.
func patternRichness(patterns []Pattern) float64 {
	distinct := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		distinct[p.Name] = struct{}{}
	}
	return clamp01(float64(len(distinct)) / 5)
}

// structuralClarity rewards files whose symbols are short and whose nesting
// stays shallow.
func structuralClarity(c Complexity, symbols []Symbol) float64 {
	if len(symbols) == 0 {
		return 0
	}
	spanScore := 1.0
	if c.AvgSymbolSpan > 20 {
		spanScore = clamp01(20 / c.AvgSymbolSpan)
	}
	nestScore := 1.0
	if c.MaxNesting > 3 {
		nestScore = clamp01(3 / float64(c.MaxNesting))
	}
	return (spanScore + nestScore) / 2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rank returns the top-n files by teaching value, descending. Equal scores
// are broken by file path so the ranking is deterministic across runs.
func Rank(files map[string]*FileResult, n int) []RankedFile {
	ranked := make([]RankedFile, 0, len(files))
	for path, fr := range files {
		ranked = append(ranked, RankedFile{FilePath: path, Score: fr.TeachingValue})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].FilePath < ranked[j].FilePath
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CountPatterns aggregates pattern occurrences across files, ordered by
// count descending then name.
func CountPatterns(files map[string]*FileResult) []PatternCount {
	counts := make(map[string]int)
	for _, fr := range files {
		for _, p := range fr.Patterns {
			counts[p.Name]++
		}
	}
	out := make([]PatternCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, PatternCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
