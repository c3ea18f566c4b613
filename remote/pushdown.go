package remote

import (
	"context"
	"strconv"

	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/metrics"
)

// allowLimitPushdown reports whether filters and a limit may be appended to
// query for the dialect of opts
func allowLimitPushdown(opts ConnectionOptions, query string) bool {
	return opts.DatabaseType().SupportsRewriteWithFiltersLimit(query)
}

// effectiveLimit returns the limit to forward to the connection, nil when
// there is none or the dialect cannot take one for query
func effectiveLimit(ctx context.Context, opts ConnectionOptions, query string, limit *int) *int {
	if limit == nil {
		return nil
	}
	allowed := allowLimitPushdown(opts, query)
	metrics.LimitPushdownTotal.WithLabelValues(strconv.FormatBool(allowed)).Inc()
	if !allowed {
		logger.DebugContext(ctx, "Limit not pushed to remote",
			"db_type", opts.DatabaseType().String(), "limit", *limit)
		return nil
	}
	return copyLimit(limit)
}

func copyLimit(limit *int) *int {
	if limit == nil {
		return nil
	}
	n := *limit
	return &n
}
