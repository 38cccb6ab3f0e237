package persisted

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/persistgraphql/errors"
)

func TestLoadQueryFiles(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		count    int
		contains []string
	}{
		{"single graphql file", "testdata/queries/test.graphql", 1, []string{testQueryHash}},
		{"directory is walked", "testdata/queries", 2, []string{testQueryHash, doubleClickQueryHash}},
		{"keyed json", "testdata/keyed.json", 2, []string{testQueryHash}},
		{"extracted queries json", "testdata/extracted_queries.json", 2, nil},
		{"yaml", "testdata/queries.yaml", 2, []string{testQueryHash}},
		{"apollo manifest", "testdata/manifest.json", 2, []string{testQueryHash}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			count, err := LoadQueryFiles(reg, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.count, count)
			assert.Equal(t, tt.count, reg.Len())
			for _, hash := range tt.contains {
				_, ok := reg.Lookup(hash)
				assert.True(t, ok, "missing %s", hash)
			}
		})
	}
}

func TestLoadQueryFiles_ManifestIDsAreRecomputed(t *testing.T) {
	reg := NewRegistry()
	_, err := LoadQueryFiles(reg, "testdata/manifest.json")
	require.NoError(t, err)

	_, ok := reg.Lookup("a")
	assert.False(t, ok, "manifest ids are not trusted")

	hash := Hash("mutation Touch {\n  touch\n}\n")
	query, ok := reg.Lookup(hash)
	require.True(t, ok)
	assert.Equal(t, "mutation Touch {\n  touch\n}\n", query)
}

func TestLoadQueryFiles_ExtractedQueriesUseKeys(t *testing.T) {
	reg := NewRegistry()
	_, err := LoadQueryFiles(reg, "testdata/extracted_queries.json")
	require.NoError(t, err)

	canonical, err := Canonicalize("{ test doubleClick }")
	require.NoError(t, err)
	_, ok := reg.Lookup(Hash(canonical))
	assert.True(t, ok)
}

func TestLoadQueryFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		isParse bool
	}{
		{"invalid graphql", "testdata/invalid/broken.graphql", true},
		{"invalid json", write("bad.json", "{"), true},
		{"invalid query in json", write("badq.json", `{"a":"{ test"}`), true},
		{"json value of wrong type", write("obj.json", `{"a":{"b":1}}`), true},
		{"invalid yaml", write("bad.yaml", "a: [1"), true},
		{"manifest failing schema", "testdata/bad_manifest.json", true},
		{"missing path", filepath.Join(dir, "nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			_, err := LoadQueryFiles(reg, tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.isParse, errors.IsParse(err))
			assert.Equal(t, 0, reg.Len())
			if tt.isParse {
				assert.Contains(t, err.Error(), tt.path, "error names the file")
			}
		})
	}
}

func TestLoadQueryFiles_AllOrNothing(t *testing.T) {
	reg := NewRegistry()
	_, err := LoadQueryFiles(reg, "testdata")
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestLoadQueryFiles_SkipsUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("{ test"), 0o644))

	count, err := LoadQueryFiles(NewRegistry(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestReadQueryFiles_Sources(t *testing.T) {
	queries, err := ReadQueryFiles("testdata/queries")
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, filepath.Join("testdata/queries", "nested", "doubleclick.gql"), queries[0].Source)
	assert.Equal(t, filepath.Join("testdata/queries", "test.graphql"), queries[1].Source)
}

func TestParseApolloManifest(t *testing.T) {
	data, err := os.ReadFile("testdata/manifest.json")
	require.NoError(t, err)

	manifest, err := ParseApolloManifest(data)
	require.NoError(t, err)
	assert.Equal(t, ApolloManifestFormat, manifest.Format)
	require.Len(t, manifest.Operations, 2)
	assert.Equal(t, "Touch", manifest.Operations[1].Name)

	_, err = ParseApolloManifest([]byte(`{"format":"apollo-persisted-query-manifest","version":1}`))
	assert.ErrorIs(t, err, errors.ErrInvalidData)
}

func TestNewApolloManifest(t *testing.T) {
	reg := NewRegistry()
	reg.Register("{\n  test\n}\n")
	reg.Register("mutation Touch {\n  touch\n}\n")

	manifest, err := NewApolloManifest(reg.Snapshot())
	require.NoError(t, err)
	require.Len(t, manifest.Operations, 2)

	byID := map[string]ManifestOperation{}
	for _, op := range manifest.Operations {
		byID[op.ID] = op
	}
	assert.Equal(t, ManifestOperation{ID: testQueryHash, Body: "{\n  test\n}\n", Name: "", Type: "query"}, byID[testQueryHash])
	touch := byID[Hash("mutation Touch {\n  touch\n}\n")]
	assert.Equal(t, "Touch", touch.Name)
	assert.Equal(t, "mutation", touch.Type)
	assert.Less(t, manifest.Operations[0].ID, manifest.Operations[1].ID)
}
