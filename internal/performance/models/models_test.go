package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
}

func TestBuckets(t *testing.T) {
	counts := map[string]int{"road": 2, "water": 5, "flood": 2, "waste": 1}

	assert.Equal(t, []Bucket{
		{Key: "water", Count: 5},
		{Key: "flood", Count: 2},
		{Key: "road", Count: 2},
		{Key: "waste", Count: 1},
	}, Buckets(counts, 0))

	assert.Len(t, Buckets(counts, 2), 2)
	assert.Empty(t, Buckets(nil, 10))
	assert.Equal(t, 10, Sum(counts))
}
