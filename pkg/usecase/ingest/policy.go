package ingest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/granary-dev/granary/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

var ErrRejectedByPolicy = goerr.New("document rejected by ingest policy", goerr.T(model.ErrTagValidation))

// Policy gates document admission with Rego rules under the `data.ingest`
// package. A document is rejected when the policy's `reject` set is
// non-empty; its members are the rejection reasons.
type Policy struct {
	query *rego.PreparedEvalQuery
}

// NewPolicy loads all .rego files from dir and prepares the evaluation
// query. A directory without policy files yields a Policy that admits
// everything.
func NewPolicy(ctx context.Context, dir string) (*Policy, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", dir))
	}
	if len(files) == 0 {
		return &Policy{}, nil
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.ingest"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	query, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare policy query")
	}

	return &Policy{query: &query}, nil
}

// Admit evaluates the policy against the document and returns
// ErrRejectedByPolicy with the policy's reasons when rejected. A nil Policy
// admits everything.
func (p *Policy) Admit(ctx context.Context, doc *model.Document) error {
	if p == nil || p.query == nil {
		return nil
	}

	input := map[string]any{
		"content":  doc.Content,
		"metadata": map[string]any(doc.Metadata),
	}

	rs, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return goerr.Wrap(err, "failed to evaluate ingest policy")
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil
	}

	rejectData, ok := data["reject"]
	if !ok {
		return nil
	}

	reasons, ok := rejectData.([]any)
	if !ok || len(reasons) == 0 {
		return nil
	}

	return goerr.Wrap(ErrRejectedByPolicy, "ingest policy rejected document", goerr.V("reasons", reasons))
}
