// Package config loads service configuration for persistgraphql.
//
// Configuration comes from an optional JSON or YAML file and PERSISTGRAPHQL_
// environment variables, merged by viper. Environment variables win over the
// file; nested keys join with underscores:
//
//	PERSISTGRAPHQL_GRAPHQL_BIND_ADDRESS=:9000
//	PERSISTGRAPHQL_GRAPHQL_ONLY_WHITELIST=true
//	PERSISTGRAPHQL_PERSISTED_QUERY_PATHS=queries/a.graphql,queries/b
//	PERSISTGRAPHQL_METRICS_ENABLED=false
//
// A complete file:
//
//	graphql:
//	  bind_address: ":8080"
//	  path: /graphql
//	  enable_playground: true
//	  only_whitelist: false
//	persisted:
//	  error_type: PersistedQueryError
//	  query_paths:
//	    - ./queries
//	metrics:
//	  enabled: true
//	  port: 9090
//	  path: /metrics
//
// Config files are checked before reading: relative paths may not leave the
// working directory, files are capped at 10MB and JSON nesting at 100 levels.
//
// Usage:
//
//	cfg, err := config.Load("persistgraphql.yaml")
//	if err != nil {
//		return err
//	}
package config
