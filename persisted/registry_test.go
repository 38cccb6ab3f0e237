package persisted

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/persistgraphql/errors"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	hash := reg.Register("{\n  test\n}\n")
	assert.Equal(t, testQueryHash, hash)
	assert.Equal(t, 1, reg.Len())

	query, ok := reg.Lookup(hash)
	require.True(t, ok)
	assert.Equal(t, "{\n  test\n}\n", query)
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	reg := NewRegistry()

	first := reg.Register("{\n  test\n}\n")
	second := reg.Register("{\n  test\n}\n")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RegisterRaw(t *testing.T) {
	reg := NewRegistry()

	hash, err := reg.RegisterRaw("{ test }")
	require.NoError(t, err)
	assert.Equal(t, testQueryHash, hash)

	again, err := reg.RegisterRaw("{\n\ttest,\n}")
	require.NoError(t, err)
	assert.Equal(t, hash, again)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.RegisterRaw("{ test")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Lookup_Missing(t *testing.T) {
	reg := NewRegistry()
	query, ok := reg.Lookup(testQueryHash)
	assert.False(t, ok)
	assert.Empty(t, query)
}

func TestRegistry_Learn(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Learn("declared", "{ test }"))

	query, ok := reg.Lookup("declared")
	require.True(t, ok)
	assert.Equal(t, "{\n  test\n}\n", query, "learned text is stored in canonical form")

	err := reg.Learn("broken", "{ test")
	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	_, ok = reg.Lookup("broken")
	assert.False(t, ok)
}

func TestRegistry_FirstWriterWins(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Learn("h", "{ test }"))
	require.NoError(t, reg.Learn("h", "{ doubleClick }"))

	query, ok := reg.Lookup("h")
	require.True(t, ok)
	assert.Equal(t, "{\n  test\n}\n", query)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Snapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Register("{\n  test\n}\n")

	snap := reg.Snapshot()
	assert.Equal(t, map[string]string{testQueryHash: "{\n  test\n}\n"}, snap)

	snap["other"] = "x"
	assert.Equal(t, 1, reg.Len(), "snapshot is a copy")
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := reg.RegisterRaw(fmt.Sprintf("{ field%d }", i%10))
			assert.NoError(t, err)
			reg.Lookup(testQueryHash)
			reg.Len()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, reg.Len())
}

func BenchmarkRegistry_RegisterRaw(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.RegisterRaw("query Greeting($name: String) { greet(name: $name) }")
	}
}
