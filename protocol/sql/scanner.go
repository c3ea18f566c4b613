package sql

import (
	"fmt"
	"strings"
)

// ScanAnalyzer is a lexical analyzer for dialects without a Go parser
// (SQLite, Oracle, DM). It skips comments, string literals and quoted
// identifiers and only looks at keywords outside parentheses.
type ScanAnalyzer struct{}

// NewScanAnalyzer creates a new lexical analyzer
func NewScanAnalyzer() Analyzer {
	return &ScanAnalyzer{}
}

type token struct {
	word  string // upper-cased keyword or identifier; empty for punctuation
	punct byte
	depth int
}

// Analyze tokenizes query and reports its shape
func (s *ScanAnalyzer) Analyze(query string) (*QueryShape, error) {
	tokens, err := scanTokens(query)
	if err != nil {
		return nil, err
	}

	var statements [][]token
	var current []token
	for _, tok := range tokens {
		if tok.punct == ';' && tok.depth == 0 {
			if len(current) > 0 {
				statements = append(statements, current)
			}
			current = nil
			continue
		}
		current = append(current, tok)
	}
	if len(current) > 0 {
		statements = append(statements, current)
	}

	shape := &QueryShape{Statements: len(statements)}
	if len(statements) != 1 {
		return shape, nil
	}

	stmt := statements[0]
	shape.IsQuery = isReadQuery(stmt)
	for i, tok := range stmt {
		if tok.depth != 0 || tok.word == "" {
			continue
		}
		next := ""
		if i+1 < len(stmt) {
			next = stmt[i+1].word
		}
		switch tok.word {
		case "INTO":
			shape.HasInto = true
		case "FOR":
			if next == "UPDATE" || next == "SHARE" {
				shape.HasLocking = true
			}
		case "ORDER":
			if next == "BY" {
				shape.HasOrderBy = true
			}
		case "LIMIT":
			shape.HasLimit = true
		case "FETCH":
			if next == "FIRST" || next == "NEXT" {
				shape.HasLimit = true
			}
		}
	}
	return shape, nil
}

// isReadQuery reports whether the statement's main verb only reads rows.
// For WITH, the verb is the first top-level statement keyword after the CTEs
// and no CTE body may modify data.
func isReadQuery(stmt []token) bool {
	first := stmt[0]
	if first.punct == '(' {
		// parenthesized query: look at the first word inside
		for _, tok := range stmt {
			if tok.word != "" {
				return tok.word == "SELECT" || tok.word == "VALUES"
			}
		}
		return false
	}
	switch first.word {
	case "SELECT", "VALUES":
		return true
	case "WITH":
		read := false
		for _, tok := range stmt[1:] {
			switch tok.word {
			case "INSERT", "UPDATE", "DELETE", "MERGE":
				// at any depth: a CTE body may itself modify data
				return false
			case "SELECT", "VALUES":
				if tok.depth == 0 {
					read = true
				}
			case "REPLACE":
				// REPLACE(...) is also a string function
				if tok.depth == 0 && !read {
					return false
				}
			}
		}
		return read
	}
	return false
}

func scanTokens(query string) ([]token, error) {
	var tokens []token
	depth := 0
	i := 0
	n := len(query)
	for i < n {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == '-' && i+1 < n && query[i+1] == '-':
			for i < n && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment")
			}
			i += end + 4
		case c == '\'' || c == '"' || c == '`':
			j, err := skipQuoted(query, i, c)
			if err != nil {
				return nil, err
			}
			// quoted identifiers and literals carry no keywords
			tokens = append(tokens, token{punct: c, depth: depth})
			i = j
		case c == '(':
			tokens = append(tokens, token{punct: c, depth: depth})
			depth++
			i++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
			tokens = append(tokens, token{punct: c, depth: depth})
			i++
		case isWordByte(c):
			j := i
			for j < n && isWordByte(query[j]) {
				j++
			}
			tokens = append(tokens, token{word: strings.ToUpper(query[i:j]), depth: depth})
			i = j
		default:
			tokens = append(tokens, token{punct: c, depth: depth})
			i++
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}
	return tokens, nil
}

// skipQuoted returns the index after the closing quote; doubled quotes escape
func skipQuoted(query string, start int, quote byte) (int, error) {
	i := start + 1
	for i < len(query) {
		if query[i] == quote {
			if i+1 < len(query) && query[i+1] == quote {
				i += 2
				continue
			}
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("unterminated quoted string")
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c == '#' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}
