package adapter

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// BigQuery is an interface for querying tabular analytics datasets
type BigQuery interface {
	// Query executes a query and returns all result rows
	Query(ctx context.Context, query string) ([]map[string]any, error)
}

type bigqueryClient struct {
	client *bigquery.Client
}

// NewBigQuery creates a new BigQuery client
func NewBigQuery(ctx context.Context, projectID string) (BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return &bigqueryClient{
		client: client,
	}, nil
}

func (bq *bigqueryClient) Query(ctx context.Context, query string) ([]map[string]any, error) {
	q := bq.client.Query(query)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run query")
	}

	var results []map[string]any
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate query result")
		}

		rowMap := make(map[string]any, len(row))
		for k, v := range row {
			rowMap[k] = v
		}
		results = append(results, rowMap)
	}

	return results, nil
}
