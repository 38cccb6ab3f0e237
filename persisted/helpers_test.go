package persisted

import (
	"context"
	"fmt"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
)

var widgetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Widget",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.Field{Type: graphql.String},
	},
})

// newTestSchema builds a small schema with a query and a mutation root
func newTestSchema(t testing.TB) *graphql.Schema {
	t.Helper()

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"test": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "hello", nil
				},
			},
			"doubleClick": &graphql.Field{
				Type:              graphql.String,
				DeprecationReason: "use click",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "click click", nil
				},
			},
			"greet": &graphql.Field{
				Type:        graphql.String,
				Description: "Greets someone",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{
						Type:         graphql.String,
						DefaultValue: "world",
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return fmt.Sprintf("Hello, %v", p.Args["name"]), nil
				},
			},
			"widget": &graphql.Field{
				Type: widgetType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return map[string]interface{}{"id": "w1", "name": "sprocket"}, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"touch": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return true, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	require.NoError(t, err)
	return &schema
}

// newTestEngine builds an engine over the test schema
func newTestEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(newTestSchema(t), opts...)
	require.NoError(t, err)
	return engine
}

// execute runs a resolution against schema and formats the result
func execute(schema *graphql.Schema, format FormatFunc, res Resolution) *Response {
	result := graphql.Do(graphql.Params{
		Schema:         *schema,
		RequestString:  res.Request.Query,
		OperationName:  res.Request.OperationName,
		VariableValues: res.Request.Variables,
		Context:        context.Background(),
	})
	return format(FromResult(result))
}

func persistedExtensions(hash string) []byte {
	return []byte(fmt.Sprintf(`{"persistedQuery":{"version":1,"sha256Hash":%q}}`, hash))
}
