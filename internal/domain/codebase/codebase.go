// Package codebase defines the scanned-codebase model and the filesystem
// scan that produces the analyzable file list.
package codebase

import "time"

// Codebase is the outcome of scanning a source tree: the ordered list of
// analyzable files plus per-language counts. The file list is the hard
// precondition for codebase-level analysis.
type Codebase struct {
	ID        string         `json:"id"`
	Root      string         `json:"root"`
	Files     []string       `json:"files"`
	Languages map[string]int `json:"languages"`
	ScannedAt time.Time      `json:"scanned_at"`
}

// languageByExt is the extension allow-list. Files outside it are not
// analyzable and never enter the file list.
var languageByExt = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
}

// LanguageForPath returns the language for a file path and whether the
// file is analyzable.
func LanguageForPath(path string) (string, bool) {
	for ext, lang := range languageByExt {
		if hasSuffixFold(path, ext) {
			return lang, true
		}
	}
	return "", false
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := range suffix {
		c, d := tail[i], suffix[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != d {
			return false
		}
	}
	return true
}
