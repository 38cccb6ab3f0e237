// Package persistgraphql serves GraphQL with automatic persisted queries.
//
// A client sends the SHA-256 hash of a query instead of its text. The server
// answers from its registry of known queries, or asks the client to resend
// the text once so it can learn the hash. Registered queries can also be
// loaded at startup and, in whitelist mode, be the only queries allowed.
//
// # Wire protocol
//
// A request names its query by hash in the extensions:
//
//	{"extensions":{"persistedQuery":{"version":1,"sha256Hash":"b64e72..."}}}
//
// The hash is taken over the canonical form of the query: the document
// parsed and printed back with standard formatting, so whitespace and
// comments do not matter. An unknown hash is answered with
//
//	{"errors":[{"message":"PersistedQueryNotFound"}]}
//
// and the client retries with both hash and text. In whitelist mode unknown
// hashes and plain text queries get PersistedQueryNotAllowed instead.
//
// Protocol errors travel through the GraphQL executor as ordinary results:
// the schema gains a root field (PersistedQueryError by default) that echoes
// its argument, and the response formatter turns a non-empty value of that
// field into the error envelope above.
//
// # Packages
//
//	persisted         canonicalizer, registry, schema augmentation, resolver,
//	                  response interceptor and the Transform adapter boundary
//	gateway/graphql   net/http and gin handlers, HTTP server and lifecycle
//	config            viper-backed file and environment configuration
//	metric            Prometheus metrics and their HTTP endpoint
//	health            component health and aggregation
//	errors            error classification shared by every package
//
// # Binaries
//
//	cmd/persistgraphql  the server
//	cmd/apqctl          hashes, validates and exports query files
//
// Running the server with a directory of queries in whitelist mode:
//
//	persistgraphql --queries=./queries --only-whitelist
//
// Producing an Apollo manifest of the same queries:
//
//	apqctl manifest --format apollo ./queries > manifest.json
package persistgraphql
