// Package graphql serves persisted GraphQL queries over HTTP.
//
// A Handler reads each request through persisted.Engine.Transform, executes
// the resolved queries with graphql-go and writes the formatted results. It
// works as a net/http handler (ServeHTTP) and as a gin handler (Gin). The
// response mirrors the request: a single object for a single request, an
// array in request order for a batch.
//
// # Configuration
//
//	{
//	  "bind_address": ":8080",
//	  "path": "/graphql",
//	  "enable_playground": true,
//	  "enable_cors": true,
//	  "timeout": "30s",
//	  "max_body_bytes": 1048576,
//	  "only_whitelist": false
//	}
//
// # Error Handling
//
// Protocol errors from the engine are ordinary 200 responses:
//
//	{"errors":[{"message":"PersistedQueryNotFound"}]}
//
// Requests that cannot execute at all get an error status:
//
//	400 Extensions are invalid JSON.   string extensions holding invalid JSON
//	400 Must provide query string.     no query text and no persisted hash
//	400 INVALID_INPUT                  undecodable body or variables
//	413 PAYLOAD_TOO_LARGE              body over max_body_bytes
//	500 INTERNAL_ERROR                 engine misconfiguration
//
// Every response carries an X-Request-ID header, taken from the request when
// present.
//
// # Server
//
// Server adds a health endpoint, an optional GraphQL Playground at "/" and
// CORS handling. Gateway wires engine, handler and server together and runs
// them until its context is cancelled:
//
//	gw, err := graphql.NewGateway(cfg, engine, graphql.HandlerOptions{Metrics: m})
//	if err != nil {
//		return err
//	}
//	if err := gw.Initialize(); err != nil {
//		return err
//	}
//	return gw.Start(ctx)
package graphql
