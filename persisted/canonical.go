package persisted

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/printer"

	"github.com/c360/persistgraphql/errors"
)

// Canonicalize parses query text and prints it back in canonical form.
// Texts that parse to the same document canonicalize to the same string,
// whatever their whitespace, commas or comments.
func Canonicalize(text string) (string, error) {
	return canonicalize("", text)
}

func canonicalize(source, text string) (string, error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: text,
		Options: parser.ParseOptions{
			NoLocation: true,
		},
	})
	if err != nil {
		return "", errors.NewParseError(source, err)
	}

	printed, ok := printer.Print(doc).(string)
	if !ok {
		return "", errors.NewParseError(source, errors.ErrInvalidData)
	}
	return printed, nil
}

// Hash returns the lowercase hex SHA-256 digest of a canonical query.
func Hash(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
