// Package errors provides standardized error handling for persistgraphql.
//
// # Error Classification
//
// Errors fall into three classes:
//
//   - Transient: timeouts and temporary unavailability (retry may succeed)
//   - Invalid: malformed input such as an undecodable request body or bad query text
//   - Fatal: unrecoverable configuration problems that stop the call
//
// Classification works with errors.Is and errors.As through wrapping chains.
//
// # Engine Error Taxonomy
//
// The persisted-query engine reports two kinds of Go errors:
//
//	ConfigurationError  IsConfiguration(err)  bad schema, bad error field, bad server context
//	ParseError          IsParse(err)          query text that does not parse
//
// Protocol outcomes such as PersistedQueryNotFound are not Go errors. They travel
// through the GraphQL response pipeline as ordinary results.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions attach a class while wrapping:
//
//	errors.WrapTransient(err, "Server", "Stop", "graceful shutdown")
//	errors.WrapInvalid(err, "Engine", "Transform", "decode request body")
//	errors.WrapFatal(err, "Engine", "UpdateSchema", "augment schema")
//
// Wrap adds context without changing the class of the wrapped error:
//
//	errors.Wrap(err, "Loader", "LoadQueryFiles", "read directory")
package errors
