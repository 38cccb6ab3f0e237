package persisted

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/persistgraphql/errors"
)

// LoadQueryFiles registers every query found under path and returns how many
// documents were read. path may be a file or a directory, which is walked
// recursively in name order.
//
// Recognized files:
//   - .graphql, .gql: one query document
//   - .json: an object mapping keys to query text, a persistgraphql
//     extracted_queries.json mapping query text to ids, or an Apollo
//     persisted query manifest
//   - .yaml, .yml: a mapping of keys to query text
//
// Other files are skipped. Nothing is registered unless every document parses.
func LoadQueryFiles(reg *Registry, path string) (int, error) {
	queries, err := ReadQueryFiles(path)
	if err != nil {
		return 0, err
	}
	for _, q := range queries {
		reg.Register(q.Canonical)
	}
	return len(queries), nil
}

// SourcedQuery is a canonical query and the file it was read from
type SourcedQuery struct {
	Source    string
	Canonical string
}

// ReadQueryFiles reads and canonicalizes the queries under path without
// registering them.
func ReadQueryFiles(path string) ([]SourcedQuery, error) {
	var out []SourcedQuery
	if err := readPath(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readPath(path string, out *[]SourcedQuery) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "ReadQueryFiles", fmt.Sprintf("stat %s", path))
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "ReadQueryFiles", fmt.Sprintf("read directory %s", path))
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			if err := readPath(filepath.Join(path, entry.Name()), out); err != nil {
				return err
			}
		}
		return nil
	}

	var texts []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphql", ".gql":
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "ReadQueryFiles", fmt.Sprintf("read %s", path))
		}
		texts = []string{string(data)}
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "ReadQueryFiles", fmt.Sprintf("read %s", path))
		}
		texts, err = jsonQueries(path, data)
		if err != nil {
			return err
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "ReadQueryFiles", fmt.Sprintf("read %s", path))
		}
		texts, err = yamlQueries(path, data)
		if err != nil {
			return err
		}
	default:
		return nil
	}

	for _, text := range texts {
		canonical, err := canonicalize(path, text)
		if err != nil {
			return err
		}
		*out = append(*out, SourcedQuery{Source: path, Canonical: canonical})
	}
	return nil
}

// jsonQueries extracts query texts from a JSON query file
func jsonQueries(path string, data []byte) ([]string, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError(path, err)
	}

	if format, _ := doc["format"].(string); format == ApolloManifestFormat {
		manifest, err := ParseApolloManifest(data)
		if err != nil {
			return nil, errors.NewParseError(path, err)
		}
		texts := make([]string, 0, len(manifest.Operations))
		for _, op := range manifest.Operations {
			texts = append(texts, op.Body)
		}
		return texts, nil
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	texts := make([]string, 0, len(keys))
	for _, key := range keys {
		switch v := doc[key].(type) {
		case string:
			texts = append(texts, v)
		case float64:
			// extracted_queries.json: query text -> id
			texts = append(texts, key)
		default:
			return nil, errors.NewParseError(path,
				fmt.Errorf("%w: value for %q is neither query text nor an id", errors.ErrInvalidData, key))
		}
	}
	return texts, nil
}

// yamlQueries extracts query texts from a YAML key to text mapping
func yamlQueries(path string, data []byte) ([]string, error) {
	var doc map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError(path, err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	texts := make([]string, 0, len(keys))
	for _, key := range keys {
		texts = append(texts, doc[key])
	}
	return texts, nil
}

// ApolloManifestFormat is the format tag of an Apollo persisted query manifest
const ApolloManifestFormat = "apollo-persisted-query-manifest"

const apolloManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["format", "version", "operations"],
  "properties": {
    "format": {"const": "apollo-persisted-query-manifest"},
    "version": {"const": 1},
    "operations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "body", "name", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "body": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "type": {"enum": ["query", "mutation", "subscription"]}
        }
      }
    }
  }
}`

// ApolloManifest is an Apollo persisted query manifest
type ApolloManifest struct {
	Format     string              `json:"format"`
	Version    int                 `json:"version"`
	Operations []ManifestOperation `json:"operations"`
}

// ManifestOperation is one operation of an Apollo manifest
type ManifestOperation struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ParseApolloManifest validates data against the manifest schema and decodes it
func ParseApolloManifest(data []byte) (*ApolloManifest, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(apolloManifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "ParseApolloManifest", "validate manifest")
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrInvalidData, strings.Join(problems, "; ")),
			"Loader", "ParseApolloManifest", "validate manifest")
	}

	var manifest ApolloManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.WrapInvalid(err, "Loader", "ParseApolloManifest", "decode manifest")
	}
	return &manifest, nil
}
