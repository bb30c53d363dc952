package ioservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunsExactlyOnce(t *testing.T) {
	calls := 0
	task := NewTask(func() { calls++ })

	ran := task.Run()
	assert.True(t, ran)
	assert.Equal(t, 1, calls)

	ran = task.Run()
	assert.False(t, ran)
	assert.Equal(t, 1, calls)
}

func TestTaskRunSharedAcrossCopies(t *testing.T) {
	calls := 0
	task := NewTask(func() { calls++ })
	copyOfTask := task

	assert.True(t, task.Run())
	assert.False(t, copyOfTask.Run())
	assert.Equal(t, 1, calls)
}

func TestZeroTaskRunIsNoop(t *testing.T) {
	var zero Task
	assert.True(t, zero.IsZero())
	assert.False(t, zero.Run())
}

func TestNewTaskIsNotZero(t *testing.T) {
	task := NewTask(func() {})
	assert.False(t, task.IsZero())
}
