package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/go-chi/chi/v5"

	"github.com/guileen/remotetable/catalog"
	cerrors "github.com/guileen/remotetable/catalog/errors"
	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/physical"
	"github.com/guileen/remotetable/remote"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// DefaultRowLimit caps /rows responses that give no limit
const DefaultRowLimit = 1000

type RESTHandler struct {
	catalog *catalog.Catalog
}

func NewRESTHandler(c *catalog.Catalog) *RESTHandler {
	return &RESTHandler{catalog: c}
}

func (h *RESTHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", h.DescribeTable)
			r.Get("/explain", h.ExplainScan)
			r.Get("/rows", h.QueryRows)
		})
	})
}

type TableSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TableResponse struct {
	Name         string                   `json:"name"`
	SQL          string                   `json:"sql"`
	DatabaseType string                   `json:"db_type"`
	Columns      []types.ColumnDefinition `json:"columns"`
	RemoteSchema *types.RemoteSchema      `json:"remote_schema,omitempty"`
}

type ExplainResponse struct {
	Plan     string   `json:"plan"`
	Pushdown []string `json:"filter_pushdown,omitempty"`
	Limit    *int     `json:"remote_limit"`
}

type QueryResponse struct {
	Columns []string                 `json:"columns"`
	Data    []map[string]interface{} `json:"data"`
	Count   int                      `json:"count"`
	HasMore bool                     `json:"has_more,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *RESTHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	tables := make([]TableSummary, 0, len(names))
	for _, name := range names {
		def, err := h.catalog.Definition(name)
		if err != nil {
			// dropped since Names
			continue
		}
		tables = append(tables, TableSummary{Name: def.Name, Description: def.Description})
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *RESTHandler) DescribeTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")
	table, err := h.catalog.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TableResponse{
		Name:         name,
		SQL:          table.SQL(),
		DatabaseType: table.Options().DatabaseType().String(),
		Columns:      types.ColumnsFromSchema(table.Schema()),
		RemoteSchema: table.RemoteSchema(),
	})
}

// scanRequest is a scan described by query parameters: columns=a,b
// projects, limit=n caps rows and every where.<column>=<value> adds an
// equality filter
type scanRequest struct {
	projection []int
	filters    []expr.Expr
	limit      int
}

func parseScanRequest(r *http.Request, schema *arrow.Schema) (*scanRequest, error) {
	const op = "parseScanRequest"
	q := r.URL.Query()
	req := &scanRequest{limit: DefaultRowLimit}

	if cols := q.Get("columns"); cols != "" {
		for _, name := range strings.Split(cols, ",") {
			idx := schema.FieldIndices(strings.TrimSpace(name))
			if len(idx) == 0 {
				return nil, rerrors.NewColumnNotFound(op, name, types.ErrColumnNotFound)
			}
			req.projection = append(req.projection, idx[0])
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			return nil, rerrors.NewInvalidArgumentf(op, "invalid limit %q", limitStr)
		}
		req.limit = n
	}

	for key, values := range q {
		name, ok := strings.CutPrefix(key, "where.")
		if !ok {
			continue
		}
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, rerrors.NewColumnNotFound(op, name, types.ErrColumnNotFound)
		}
		for _, v := range values {
			lit, err := parseLiteral(schema.Field(idx[0]).Type, v)
			if err != nil {
				return nil, rerrors.Wrapf(err, rerrors.ErrCodeInvalidArgument, op, "where.%s", name)
			}
			req.filters = append(req.filters, expr.Eq(expr.Col(name), expr.Lit(lit)))
		}
	}
	return req, nil
}

// parseLiteral converts a query parameter to a literal of the column's type
func parseLiteral(dt arrow.DataType, s string) (any, error) {
	if s == "" {
		return nil, errors.New("empty value")
	}
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return strconv.ParseInt(s, 10, 64)
	case arrow.FLOAT32, arrow.FLOAT64:
		return strconv.ParseFloat(s, 64)
	case arrow.BOOL:
		return strconv.ParseBool(s)
	default:
		return s, nil
	}
}

// plan builds the scan with its limit negotiated through GlobalLimitExec
func (h *RESTHandler) plan(r *http.Request) (*remote.Table, *scanRequest, physical.ExecutionPlan, error) {
	table, err := h.catalog.Get(chi.URLParam(r, "table"))
	if err != nil {
		return nil, nil, nil, err
	}
	req, err := parseScanRequest(r, table.Schema())
	if err != nil {
		return nil, nil, nil, err
	}
	for i, p := range table.SupportsFiltersPushdown(req.filters) {
		if p != remote.PushdownExact {
			return nil, nil, nil, rerrors.NewInvalidArgumentf("plan",
				"filter %s cannot be evaluated by the remote database", req.filters[i])
		}
	}
	exec, err := table.Scan(req.projection, req.filters, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	// one extra row tells whether more are available
	limited, err := physical.NewGlobalLimitExec(exec, req.limit+1)
	if err != nil {
		return nil, nil, nil, err
	}
	return table, req, limited, nil
}

func (h *RESTHandler) ExplainScan(w http.ResponseWriter, r *http.Request) {
	table, req, plan, err := h.plan(r)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := ExplainResponse{Plan: physical.DisplayPlan(plan, physical.DisplayVerbose)}
	for _, p := range table.SupportsFiltersPushdown(req.filters) {
		resp.Pushdown = append(resp.Pushdown, p.String())
	}
	if children := plan.Children(); len(children) == 1 {
		resp.Limit = children[0].Fetch()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RESTHandler) QueryRows(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithContextValue(r.Context(), logger.TableKey, chi.URLParam(r, "table"))
	_, req, plan, err := h.plan(r)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.DebugContext(ctx, "Scanning table", "request", req.String())

	records, err := physical.Collect(ctx, plan, 0)
	if err != nil {
		logger.WarnContext(ctx, "Scan failed", logger.ErrorField(err))
		writeError(w, err)
		return
	}
	defer physical.ReleaseAll(records)

	schema := plan.Schema()
	resp := QueryResponse{Columns: make([]string, schema.NumFields()), Data: []map[string]interface{}{}}
	for i, f := range schema.Fields() {
		resp.Columns[i] = f.Name
	}
	for _, rec := range records {
		for row := 0; row < int(rec.NumRows()); row++ {
			if len(resp.Data) == req.limit {
				resp.HasMore = true
				break
			}
			m := make(map[string]interface{}, len(resp.Columns))
			for c, name := range resp.Columns {
				m[name] = rec.Column(c).GetOneForMarshal(row)
			}
			resp.Data = append(resp.Data, m)
		}
	}
	resp.Count = len(resp.Data)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, ""
	var re *rerrors.RemoteError
	var ce *cerrors.CatalogError
	switch {
	case errors.As(err, &ce):
		code = ce.Code()
		status = http.StatusBadRequest
		if cerrors.IsTableNotFoundError(err) {
			status = http.StatusNotFound
		}
	case errors.As(err, &re):
		code = re.Code
		switch {
		case rerrors.IsConnectionError(err):
			status = http.StatusBadGateway
		case rerrors.IsInvalidArgument(err), rerrors.IsColumnNotFound(err):
			status = http.StatusBadRequest
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: code})
}

// String renders a scan request for logs
func (s *scanRequest) String() string {
	return fmt.Sprintf("projection=%v filters=%v limit=%d", s.projection, s.filters, s.limit)
}
