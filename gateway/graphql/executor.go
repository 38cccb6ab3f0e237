package graphql

import (
	"context"

	gographql "github.com/graphql-go/graphql"

	"github.com/c360/persistgraphql/persisted"
)

// checkResolutions rejects a transformed body that cannot execute as a whole
func checkResolutions(resolutions []persisted.Resolution) *requestError {
	for _, res := range resolutions {
		if res.Outcome == persisted.OutcomeMalformedExtensions {
			e := invalidExtensions()
			return &e
		}
	}
	for _, res := range resolutions {
		if res.Request.Query == "" {
			e := missingQuery()
			return &e
		}
	}
	return nil
}

// execute runs every resolution in order and formats each result. Responses
// line up with t.Resolutions.
func execute(ctx context.Context, t *persisted.Transformed) []*persisted.Response {
	responses := make([]*persisted.Response, 0, len(t.Resolutions))
	for _, res := range t.Resolutions {
		result := gographql.Do(gographql.Params{
			Schema:         *t.Options.Schema,
			RequestString:  res.Request.Query,
			RootObject:     t.Options.RootObject,
			VariableValues: res.Request.Variables,
			OperationName:  res.Request.OperationName,
			Context:        ctx,
		})
		responses = append(responses, t.Options.FormatResponse(persisted.FromResult(result)))
	}
	return responses
}
