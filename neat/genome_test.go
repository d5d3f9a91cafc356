package neat

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestNewGenomeShape(t *testing.T) {
	rng := newTestRand(1)
	for _, shape := range [][2]int{{1, 1}, {2, 1}, {6, 2}, {4, 5}} {
		g, next := NewGenome(shape[0], shape[1], rng)
		assert.Equal(t, uint64((shape[0]+1)*shape[1]), next)
		assert.Len(t, g.Connections, (shape[0]+1)*shape[1])
		assert.Equal(t, shape[0]+shape[1], g.MaxNode())

		out := g.Evaluate(make([]float64, shape[0]))
		assert.Len(t, out, shape[1])
		require.NoError(t, g.Validate())
	}
}

func TestNewGenomeStructuralIDs(t *testing.T) {
	a, _ := NewGenome(3, 2, newTestRand(1))
	b, _ := NewGenome(3, 2, newTestRand(2))
	for id, ca := range a.Connections {
		cb, ok := b.Connections[id]
		require.True(t, ok)
		assert.Equal(t, ca.From, cb.From)
		assert.Equal(t, ca.To, cb.To)
	}
}

func TestEvaluateZeroInputUsesBiasOnly(t *testing.T) {
	g, _ := NewGenome(3, 2, newTestRand(3))
	out := g.Evaluate([]float64{0, 0, 0})

	for o := 0; o < g.NumOutputs; o++ {
		var biasWeight float64
		for _, c := range g.Connections {
			if c.From == g.BiasNode() && c.To == g.OutputNode(o) {
				biasWeight = c.Weight
			}
		}
		assert.InDelta(t, Activate(biasWeight), out[o], 1e-12)
	}
}

func TestEvaluateBiasIsInputIndependent(t *testing.T) {
	// A genome whose only enabled edges leave the bias node gives the same
	// output for every input vector.
	rng := newTestRand(4)
	g, _ := NewGenome(2, 1, rng)
	for id, c := range g.Connections {
		if c.From != g.BiasNode() {
			c.Disabled = true
			g.Connections[id] = c
		}
	}
	assert.Equal(t, g.Evaluate([]float64{0, 0}), g.Evaluate([]float64{3, -7}))
}

func TestEvaluateHiddenNode(t *testing.T) {
	g := &Genome{NumInputs: 1, NumOutputs: 1, Connections: map[uint64]Connection{
		0: {From: 0, To: 2, Weight: 1, Disabled: true},
		1: {From: 1, To: 2, Weight: 0.1},
		2: {From: 0, To: 3, Weight: 1},
		3: {From: 3, To: 2, Weight: 0.5},
	}}
	hidden := Activate(0.2)
	want := Activate(0.1 + 0.5*hidden)
	assert.InDelta(t, want, g.Evaluate([]float64{0.2})[0], 1e-12)
}

func TestEvaluatePanicsOnInputMismatch(t *testing.T) {
	g, _ := NewGenome(2, 1, newTestRand(5))
	assert.Panics(t, func() { g.Evaluate([]float64{1}) })
	assert.Panics(t, func() { g.Evaluate([]float64{1, 2, 3}) })
}

func TestActivateGain(t *testing.T) {
	assert.Equal(t, 0.0, Activate(0))
	assert.InDelta(t, 0.986614298, Activate(0.5), 1e-9)
	assert.InDelta(t, -Activate(0.3), Activate(-0.3), 1e-15)
}

func TestCopyIsDeep(t *testing.T) {
	g, _ := NewGenome(2, 1, newTestRand(6))
	c := g.Copy()
	c.Connections[0] = Connection{From: 0, To: 3, Weight: 42}
	assert.NotEqual(t, g.Connections[0], c.Connections[0])
}

func TestInnovationCounter(t *testing.T) {
	ids := NewInnovationCounter(5)
	assert.Equal(t, uint64(5), ids.Next())
	assert.Equal(t, uint64(6), ids.Next())
	assert.Equal(t, uint64(7), ids.Peek())

	ids.Observe(10)
	assert.Equal(t, uint64(11), ids.Peek())
	ids.Observe(3)
	assert.Equal(t, uint64(11), ids.Peek())
}

func TestInnovationCounterConcurrent(t *testing.T) {
	ids := NewInnovationCounter(0)
	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				id := ids.Next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1000)
	assert.Equal(t, uint64(1000), ids.Peek())
}
