package ioservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsyncResultOnSetAfterSetRunsImmediately(t *testing.T) {
	r := NewAsyncResult[int]()
	r.SetResult(42)

	got := -1
	r.OnSet(func(v int) { got = v })
	assert.Equal(t, 42, got)
}

func TestAsyncResultOnSetBeforeSetRunsOnSetResult(t *testing.T) {
	r := NewAsyncResult[string]()
	got := ""
	r.OnSet(func(v string) { got = v })

	assert.Equal(t, "", got)
	r.SetResult("done")
	assert.Equal(t, "done", got)
}

func TestAsyncResultDoubleSetPanics(t *testing.T) {
	r := NewAsyncResult[int]()
	r.SetResult(1)
	assert.Panics(t, func() { r.SetResult(2) })
}

func TestAsyncResultUnsetValuePanics(t *testing.T) {
	r := NewAsyncResult[int]()
	assert.Panics(t, func() { r.Value() })
}

func TestAsyncResultValueAndIsSet(t *testing.T) {
	r := NewAsyncResult[int]()
	assert.False(t, r.IsSet())

	r.SetResult(7)
	assert.True(t, r.IsSet())
	assert.Equal(t, 7, r.Value())
}
