package metrics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleCounter(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Stat{}, SimpleCounter{}.Count(""))
	assert.Equal(Stat{Bytes: 29, Tokens: 7, Lines: 2}, SimpleCounter{}.Count("Hello, world!\nThis is a test."))
	assert.Equal(Stat{Bytes: 8, Tokens: 2, Lines: 2}, SimpleCounter{}.Count("abc\ndef\n"))
}

func TestNewCounter(t *testing.T) {
	c, err := NewCounter("")
	assert.NoError(t, err)
	assert.IsType(t, SimpleCounter{}, c)

	c, err = NewCounter(EstimatorSimple)
	assert.NoError(t, err)
	assert.IsType(t, SimpleCounter{}, c)

	_, err = NewCounter("no-such-model")
	assert.Error(t, err)
}

func TestTally(t *testing.T) {
	assert := assert.New(t)

	tally := NewTally(SimpleCounter{}, 3)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tally.Add(KindFile, fmt.Sprintf("f%02d.txt", i), "12345678\n")
		}()
	}
	wg.Wait()
	tally.Add(KindFrame, "headers", "File: x\n\n")
	tally.Add(KindFrame, "headers", "File: y\n\n")
	tally.Wait()
	tally.Wait()

	assert.Len(tally.Items(), 21)
	assert.Equal(Stat{Bytes: 9, Tokens: 2, Lines: 1}, tally.Get(Key{Kind: KindFile, Name: "f07.txt"}))
	assert.Equal(Stat{Bytes: 180, Tokens: 40, Lines: 20}, tally.Sum(KindFile))
	assert.Equal(Stat{Bytes: 18, Tokens: 4, Lines: 4}, tally.Sum(KindFrame))
	assert.Equal(198, tally.Total().Bytes)

	// Adding after Wait is measured inline.
	tally.Add(KindFile, "late.txt", "abcd")
	assert.Equal(1, tally.Get(Key{Kind: KindFile, Name: "late.txt"}).Tokens)

	assert.Equal("file:a/b.go", Key{Kind: KindFile, Name: "a/b.go"}.String())
}
