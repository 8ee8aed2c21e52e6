package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](time.Hour)
	defer c.Close()

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMissing(t *testing.T) {
	c := New[*int](time.Hour)
	defer c.Close()

	val, found := c.Get("nonexistent")
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestCache_Expiration(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[string](time.Minute)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("key", "value")

	val, found := c.Get("key")
	assert.True(t, found)
	assert.Equal(t, "value", val)

	now = now.Add(2 * time.Minute)

	val, found = c.Get("key")
	assert.False(t, found)
	assert.Empty(t, val)
}

func TestCache_SetWithTTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[string](time.Hour)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.SetWithTTL("short", "value", time.Second)
	c.Set("long", "value")

	now = now.Add(5 * time.Second)

	_, found := c.Get("short")
	assert.False(t, found)
	_, found = c.Get("long")
	assert.True(t, found)
}

func TestCache_Delete(t *testing.T) {
	c := New[int](time.Hour)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	_, found := c.Get("a")
	assert.False(t, found)
	assert.Len(t, c.items, 1)
}

func TestCache_GetOrSet(t *testing.T) {
	c := New[string](time.Hour)
	defer c.Close()

	callCount := 0
	fn := func() (string, error) {
		callCount++
		return "computed", nil
	}

	val, err := c.GetOrSet("key", fn)
	assert.NoError(t, err)
	assert.Equal(t, "computed", val)

	val, err = c.GetOrSet("key", fn)
	assert.NoError(t, err)
	assert.Equal(t, "computed", val)
	assert.Equal(t, 1, callCount)
}

func TestCache_GetOrSetError(t *testing.T) {
	c := New[string](time.Hour)
	defer c.Close()

	_, err := c.GetOrSet("key", func() (string, error) { return "", errors.New("boom") })
	assert.EqualError(t, err, "boom")
	assert.Empty(t, c.items)
}

func TestCache_Purge(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[int](time.Second)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("old", 1)
	c.SetWithTTL("fresh", 2, time.Hour)
	now = now.Add(time.Minute)

	c.purge()
	assert.Len(t, c.items, 1)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](time.Hour)
	defer c.Close()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			c.Set("key", i)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			c.Get("key")
		}
		done <- true
	}()

	<-done
	<-done
}
