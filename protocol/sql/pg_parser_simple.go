//go:build pgquery_simple
// +build pgquery_simple

package sql

// NewPGAnalyzer creates a PostgreSQL analyzer.
// This is the simple build variant that avoids cgo and uses the lexical scanner.
func NewPGAnalyzer() Analyzer {
	return NewScanAnalyzer()
}
