package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/granary-dev/granary/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
)

const noSalesData = "No sales data found. Please ensure sales data has been loaded."

// UseCase answers structured sales questions from a BigQuery dataset. It is
// the backend behind the chat classifier's structured-query route. The sales
// table holds one row per order line item: order_id, customer_id,
// customer_name, product_name, total.
type UseCase struct {
	bq    adapter.BigQuery
	table string
}

// New creates a new analytics UseCase. table is the fully qualified sales
// table name, e.g. "myproject.sales.line_items".
func New(bq adapter.BigQuery, table string) *UseCase {
	return &UseCase{
		bq:    bq,
		table: table,
	}
}

// Answer produces a plain-text report for the query: a top-customers ranking
// when asked for one, otherwise a dataset summary.
func (u *UseCase) Answer(ctx context.Context, query string) (string, error) {
	lowered := strings.ToLower(query)
	if strings.Contains(lowered, "top") && strings.Contains(lowered, "customer") {
		return u.topCustomers(ctx, 3)
	}
	return u.summary(ctx)
}

func (u *UseCase) topCustomers(ctx context.Context, limit int) (string, error) {
	query := fmt.Sprintf("SELECT customer_name, SUM(total) AS total_amount, "+
		"STRING_AGG(DISTINCT product_name, \", \") AS products "+
		"FROM `%s` GROUP BY customer_id, customer_name "+
		"ORDER BY total_amount DESC LIMIT %d", u.table, limit)

	rows, err := u.bq.Query(ctx, query)
	if err != nil {
		return "", goerr.Wrap(err, "failed to query top customers")
	}
	if len(rows) == 0 {
		return noSalesData, nil
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Top %d customers by total purchase amount:\n\n", len(rows))
	for i, row := range rows {
		fmt.Fprintf(&report, "%d. %s\n", i+1, asString(row["customer_name"]))
		fmt.Fprintf(&report, "   Total Purchase Amount: $%.2f\n", asFloat(row["total_amount"]))
		fmt.Fprintf(&report, "   Products Purchased: %s\n\n", asString(row["products"]))
	}

	return report.String(), nil
}

func (u *UseCase) summary(ctx context.Context) (string, error) {
	query := fmt.Sprintf("SELECT SUM(total) AS total_revenue, "+
		"COUNT(DISTINCT order_id) AS total_orders, "+
		"COUNT(DISTINCT customer_id) AS unique_customers FROM `%s`", u.table)

	rows, err := u.bq.Query(ctx, query)
	if err != nil {
		return "", goerr.Wrap(err, "failed to query sales summary")
	}
	if len(rows) == 0 || asInt(rows[0]["total_orders"]) == 0 {
		return noSalesData, nil
	}

	row := rows[0]
	return fmt.Sprintf("Sales Summary:\n"+
		"- Total Revenue: $%.2f\n"+
		"- Total Orders: %d\n"+
		"- Unique Customers: %d\n\n"+
		"Ask me about top customers, specific products, or any other sales data!",
		asFloat(row["total_revenue"]),
		asInt(row["total_orders"]),
		asInt(row["unique_customers"]),
	), nil
}

// BigQuery rows come back as map[string]any with driver-dependent numeric
// types.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
