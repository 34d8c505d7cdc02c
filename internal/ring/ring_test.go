// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ring_test

import (
	"testing"

	"github.com/ranjhana07/MINE/internal/ring"
	"github.com/stretchr/testify/require"
)

func TestPushBelowCapacity(t *testing.T) {
	b := ring.New[int](4)
	require.Equal(t, 4, b.Cap())
	require.Empty(t, b.Slice())

	_, ok := b.Newest()
	require.False(t, ok)

	for i := 1; i <= 3; i++ {
		_, evicted := b.Push(i)
		require.False(t, evicted)
	}

	require.Equal(t, 3, b.Len())
	require.Equal(t, []int{1, 2, 3}, b.Slice())

	n, ok := b.Newest()
	require.True(t, ok)
	require.Equal(t, 3, n)
}

func TestPushEvictsOldest(t *testing.T) {
	b := ring.New[int](3)
	for i := 1; i <= 3; i++ {
		b.Push(i)
	}

	old, evicted := b.Push(4)
	require.True(t, evicted)
	require.Equal(t, 1, old)

	old, evicted = b.Push(5)
	require.True(t, evicted)
	require.Equal(t, 2, old)

	require.Equal(t, 3, b.Len())
	require.Equal(t, []int{3, 4, 5}, b.Slice())
	require.Equal(t, 3, b.At(0))
	require.Equal(t, 5, b.At(2))
}

func TestManyWraps(t *testing.T) {
	const capacity = 100
	b := ring.New[int](capacity)
	for i := range 1050 {
		b.Push(i)
	}

	got := b.Slice()
	require.Len(t, got, capacity)
	for i, v := range got {
		require.Equal(t, 950+i, v)
	}
}

func TestSliceIsIndependent(t *testing.T) {
	b := ring.New[int](2)
	b.Push(1)
	b.Push(2)

	s := b.Slice()
	s[0] = 42
	b.Push(3)

	require.Equal(t, []int{42, 2}, s)
	require.Equal(t, []int{2, 3}, b.Slice())
}

func TestMinimumCapacity(t *testing.T) {
	b := ring.New[string](0)
	require.Equal(t, 1, b.Cap())

	b.Push("a")
	old, evicted := b.Push("b")
	require.True(t, evicted)
	require.Equal(t, "a", old)
	require.Equal(t, []string{"b"}, b.Slice())
}

func TestAtOutOfRange(t *testing.T) {
	b := ring.New[int](2)
	b.Push(1)
	require.Panics(t, func() { b.At(1) })
	require.Panics(t, func() { b.At(-1) })
}
