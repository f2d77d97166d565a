package generation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenValidity(t *testing.T) {
	var c Counter
	tok := c.Token()
	assert.True(t, tok.Valid())

	c.Invalidate()
	assert.False(t, tok.Valid())
	assert.True(t, c.Token().Valid())
}

func TestZeroTokenInvalid(t *testing.T) {
	var tok Token
	assert.False(t, tok.Valid())
}

func TestGuardDropsLateCalls(t *testing.T) {
	var c Counter
	var got []string
	report := Guard(c.Token(), func(s string) { got = append(got, s) })

	assert.True(t, report("first"))
	c.Invalidate()
	assert.False(t, report("late"))

	assert.Equal(t, []string{"first"}, got)
}

func TestConcurrentInvalidate(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Invalidate()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), c.Current())
}
