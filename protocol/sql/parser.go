package sql

// QueryShape is what the pushdown policy needs to know about a SQL text
type QueryShape struct {
	Statements int  // number of statements in the text
	IsQuery    bool // the (single) statement only reads rows: SELECT, VALUES, set operations, WITH ... SELECT
	HasInto    bool // SELECT ... INTO
	HasLocking bool // FOR UPDATE / FOR SHARE / LOCK IN SHARE MODE
	HasOrderBy bool // top-level ORDER BY
	HasLimit   bool // top-level LIMIT / FETCH FIRST
}

// Analyzer inspects a SQL text without executing it
type Analyzer interface {
	Analyze(query string) (*QueryShape, error)
}
