package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	a := V(1, 1)
	b := V(4, 5)

	assert.InDelta(t, 25.0, a.DistanceSquared(b), 1e-9)
	assert.InDelta(t, 5.0, a.Distance(b), 1e-9)
	assert.InDelta(t, 0.0, a.Distance(a), 1e-9)
	assert.Equal(t, V(5, 6), a.Add(b))
}
