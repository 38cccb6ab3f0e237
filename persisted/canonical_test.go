package persisted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/persistgraphql/errors"
)

const (
	testQueryHash        = "b64e723fc9713bdf669f79a2e32b844965bd33c4500b8ce74713967e1ddb3fe7"
	doubleClickQueryHash = "afba65219417c62b36dbfd384d077370fb714ce83742ca79e82e5b37967d8c7e"
)

func TestCanonicalize_KnownQuery(t *testing.T) {
	canonical, err := Canonicalize("{ test }")
	require.NoError(t, err)
	assert.Equal(t, "{\n  test\n}\n", canonical)
	assert.Equal(t, testQueryHash, Hash(canonical))
}

func TestCanonicalize_Projection(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"whitespace", "{ test }", "{\n\n\ttest\n}"},
		{"commas", "{ test doubleClick }", "{ test, doubleClick, }"},
		{"comments", "{ test }", "# leading comment\n{\n  test # trailing\n}"},
		{"named operation", "query Foo { test }", "query   Foo{test}"},
		{"arguments", `{ greet(name: "a") }`, `{greet(name:"a")}`},
		{"fragments", "{ ...F } fragment F on Query { test }", "{...F}\nfragment F on Query{test}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Canonicalize(tt.a)
			require.NoError(t, err)
			b, err := Canonicalize(tt.b)
			require.NoError(t, err)

			assert.Equal(t, a, b)
			assert.Equal(t, Hash(a), Hash(b))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	once, err := Canonicalize("query Greeting($name: String) { greet(name: $name) }")
	require.NoError(t, err)
	twice, err := Canonicalize(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestCanonicalize_Distinct(t *testing.T) {
	test, err := Canonicalize("{ test }")
	require.NoError(t, err)
	doubleClick, err := Canonicalize("{ doubleClick }")
	require.NoError(t, err)

	assert.NotEqual(t, Hash(test), Hash(doubleClick))
	assert.Equal(t, doubleClickQueryHash, Hash(doubleClick))
}

func TestCanonicalize_InvalidSyntax(t *testing.T) {
	for _, text := range []string{"{ test", "query {", "}", "not graphql"} {
		t.Run(text, func(t *testing.T) {
			_, err := Canonicalize(text)
			require.Error(t, err)
			assert.True(t, errors.IsParse(err))
			assert.ErrorIs(t, err, errors.ErrParsingFailed)
		})
	}
}

func TestHash_Format(t *testing.T) {
	hash := Hash("")
	assert.Len(t, hash, 64)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hash)
}
