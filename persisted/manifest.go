package persisted

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/c360/persistgraphql/errors"
)

// NewApolloManifest builds a manifest from a hash to canonical query mapping,
// ordered by hash. Each operation takes the name and type of the first
// operation in its document.
func NewApolloManifest(queries map[string]string) (*ApolloManifest, error) {
	hashes := make([]string, 0, len(queries))
	for hash := range queries {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	manifest := &ApolloManifest{
		Format:     ApolloManifestFormat,
		Version:    1,
		Operations: make([]ManifestOperation, 0, len(hashes)),
	}
	for _, hash := range hashes {
		name, kind, err := describeOperation(queries[hash])
		if err != nil {
			return nil, errors.Wrap(err, "Manifest", "NewApolloManifest", "describe "+hash)
		}
		manifest.Operations = append(manifest.Operations, ManifestOperation{
			ID:   hash,
			Body: queries[hash],
			Name: name,
			Type: kind,
		})
	}
	return manifest, nil
}

// describeOperation returns the name and type of the first operation in text
func describeOperation(text string) (string, string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: text})
	if err != nil {
		return "", "", errors.NewParseError("", err)
	}
	if len(doc.Operations) == 0 {
		return "", string(ast.Query), nil
	}
	op := doc.Operations[0]
	return op.Name, string(op.Operation), nil
}
