// Package persisted implements Automatic Persisted Queries for graphql-go
// schemas.
//
// Clients may send the SHA-256 hash of a query instead of its text, in
// extensions.persistedQuery.sha256Hash. The Engine resolves each request in a
// body against its Registry:
//
//   - a known hash runs the registered query, whatever text came with it
//   - an unknown hash with text stores the text under that hash and runs it
//   - an unknown hash without text answers PersistedQueryNotFound
//
// In whitelist mode only known hashes run; everything else answers
// PersistedQueryNotAllowed.
//
// # Hashing
//
// Hashes are computed over the canonical form of a query: the document is
// parsed and printed back, so whitespace, commas and comments do not change
// the hash. "{ test }" canonicalizes to "{\n  test\n}\n" and hashes to
// b64e723fc9713bdf669f79a2e32b844965bd33c4500b8ce74713967e1ddb3fe7.
//
// # Protocol errors
//
// Protocol errors travel through normal execution. The engine augments the
// schema with one root field, PersistedQueryError(err: String!): String by
// default, and replaces a rejected request with a query selecting that field.
// The function returned by FormatResponse turns such a result into
//
//	{"errors":[{"message":"PersistedQueryNotFound"}]}
//
// so batching and response handling work the same for rejected requests.
//
// # Usage
//
//	engine, err := persisted.New(&schema, persisted.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := engine.AddQueryFiles("queries/"); err != nil {
//		return err
//	}
//
//	transformed, err := engine.Transform(persisted.Options{}, persisted.TransformOptions{
//		Request:       r,
//		OnlyWhiteList: true,
//	})
//
// Each transformed.Resolutions[i].Request is then executed against
// transformed.Options.Schema and its result passed through
// transformed.Options.FormatResponse.
package persisted
