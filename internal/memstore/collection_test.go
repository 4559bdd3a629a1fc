package memstore

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string
	Tags []string
}

func newCollection(seed ...rec) *Collection[rec] {
	return New(
		func(r rec) string { return r.ID },
		func(r rec) rec {
			r.Tags = append([]string(nil), r.Tags...)
			return r
		},
		seed...,
	)
}

func TestInsertAndDuplicate(t *testing.T) {
	c := newCollection(rec{ID: "1"})
	require.NoError(t, c.Insert(rec{ID: "2"}))
	assert.ErrorIs(t, c.Insert(rec{ID: "2"}), ErrDuplicate)
	assert.Equal(t, 2, c.Len())
}

func TestInsertIfRejectsWithoutChange(t *testing.T) {
	c := newCollection(rec{ID: "1"})
	before := c.All()
	boom := errors.New("email duplicado")
	err := c.InsertIf(rec{ID: "2"}, func(current []rec) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, c.All())
}

func TestSnapshotsAreIsolated(t *testing.T) {
	c := newCollection(rec{ID: "1", Tags: []string{"a"}})
	snap := c.All()
	snap[0].Tags[0] = "mutado"

	got, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestUpdateFailureLeavesCollection(t *testing.T) {
	c := newCollection(rec{ID: "1", Tags: []string{"a"}})
	_, err := c.Update("1", func(cur rec, _ []rec) (rec, error) {
		cur.Tags[0] = "b"
		return cur, errors.New("falhou")
	})
	require.Error(t, err)
	got, _ := c.Get("1")
	assert.Equal(t, []string{"a"}, got.Tags)

	_, err = c.Update("x", func(cur rec, _ []rec) (rec, error) { return cur, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemove(t *testing.T) {
	c := newCollection(rec{ID: "1"}, rec{ID: "2"}, rec{ID: "3"})
	require.NoError(t, c.Remove("2"))
	assert.Equal(t, []rec{{ID: "1"}, {ID: "3"}}, c.All())
	assert.ErrorIs(t, c.Remove("2"), ErrNotFound)
	assert.Equal(t, 2, c.Len())
}

func TestConcurrentUpdatesAllApply(t *testing.T) {
	c := newCollection(rec{ID: "1"})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Update("1", func(cur rec, _ []rec) (rec, error) {
				cur.Tags = append(cur.Tags, "x")
				return cur, nil
			})
		}()
	}
	wg.Wait()
	got, _ := c.Get("1")
	assert.Len(t, got.Tags, 50)
}
