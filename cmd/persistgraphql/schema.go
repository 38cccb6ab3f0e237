package main

import (
	"sort"

	"github.com/graphql-go/graphql"

	"github.com/c360/persistgraphql/persisted"
)

// persistedQueryEntry is one registry entry as exposed by the schema
type persistedQueryEntry struct {
	Hash  string `json:"sha256Hash"`
	Query string `json:"query"`
}

// newSchema builds the schema served by the binary: build information and a
// read-only view of the persisted query registry.
func newSchema(registry *persisted.Registry) (*graphql.Schema, error) {
	persistedQueryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "PersistedQuery",
		Description: "A registered query and its SHA-256 hash",
		Fields: graphql.Fields{
			"sha256Hash": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(persistedQueryEntry).Hash, nil
				},
			},
			"query": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(persistedQueryEntry).Query, nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"version": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Server version",
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return Version, nil
				},
			},
			"persistedQueries": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(persistedQueryType))),
				Description: "Every registered query, ordered by hash",
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return registryEntries(registry), nil
				},
			},
			"persistedQuery": &graphql.Field{
				Type:        persistedQueryType,
				Description: "The query registered under sha256Hash, if any",
				Args: graphql.FieldConfigArgument{
					"sha256Hash": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					hash, _ := p.Args["sha256Hash"].(string)
					text, ok := registry.Lookup(hash)
					if !ok {
						return nil, nil
					}
					return persistedQueryEntry{Hash: hash, Query: text}, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func registryEntries(registry *persisted.Registry) []persistedQueryEntry {
	snapshot := registry.Snapshot()
	entries := make([]persistedQueryEntry, 0, len(snapshot))
	for hash, text := range snapshot {
		entries = append(entries, persistedQueryEntry{Hash: hash, Query: text})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Hash < entries[j].Hash })
	return entries
}
