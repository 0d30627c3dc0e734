package consensus

import (
	"sync"
	"testing"

	"github.com/kostaleonard/leocoin/blockchain"
	"github.com/kostaleonard/leocoin/blockchain/blockchaintest"
	"github.com/kostaleonard/leocoin/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOfLength(difficulty uint64, length int) *blockchain.Blockchain {
	c := blockchain.New(difficulty)
	for c.Len() < length {
		c.Append(c.Tip().Clone())
	}
	return c
}

func TestShouldAdopt(t *testing.T) {
	tests := []struct {
		name              string
		curLen, candLen   int
		curDiff, candDiff uint64
		want              Decision
	}{
		{"longer same difficulty", 1, 4, 2, 2, Adopted},
		{"equal length", 4, 4, 2, 2, RejectedNotLonger},
		{"shorter", 4, 2, 2, 2, RejectedNotLonger},
		{"longer different difficulty", 1, 10, 2, 3, RejectedDifficultyMismatch},
		{"longer lower difficulty", 1, 10, 2, 1, RejectedDifficultyMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldAdopt(chainOfLength(tt.curDiff, tt.curLen), chainOfLength(tt.candDiff, tt.candLen))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTryAdoptBumpsVersionOnlyOnAdoption(t *testing.T) {
	sc := NewSynchronizedChain(chainOfLength(1, 1))

	assert.Equal(t, RejectedNotLonger, sc.TryAdopt(chainOfLength(1, 1), monitoring.SourcePeer))
	assert.Equal(t, uint64(0), sc.Version())

	assert.Equal(t, Adopted, sc.TryAdopt(chainOfLength(1, 3), monitoring.SourcePeer))
	assert.Equal(t, uint64(1), sc.Version())

	assert.Equal(t, RejectedDifficultyMismatch, sc.TryAdopt(chainOfLength(2, 9), monitoring.SourcePeer))
	summary := sc.Summary()
	assert.Equal(t, 3, summary.Length)
	assert.Equal(t, uint64(1), summary.Version)
}

func TestSnapshotIsIndependent(t *testing.T) {
	c, _ := blockchaintest.Chain(t, 1, 2)
	sc := NewSynchronizedChain(c)

	snap, version := sc.Snapshot()
	snap.Blocks[1].ProofOfWork++
	snap.Append(snap.Tip())

	data, v2 := sc.Encoded()
	assert.Equal(t, version, v2)
	decoded, err := blockchain.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.Len())
	assert.NoError(t, decoded.Validate(), "edits to the snapshot must not reach the shared chain")
}

func TestConcurrentAdoptionVersionMonotonic(t *testing.T) {
	sc := NewSynchronizedChain(chainOfLength(1, 1))
	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	adoptions := make([]int, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if sc.TryAdopt(chainOfLength(1, 2+i+w), monitoring.SourcePeer) == Adopted {
					adoptions[w]++
				}
			}
		}(w)
	}

	stop := make(chan struct{})
	readerDone := make(chan bool)
	go func() {
		last, monotonic := uint64(0), true
		for {
			select {
			case <-stop:
				readerDone <- monotonic
				return
			default:
			}
			v := sc.Version()
			if v < last {
				monotonic = false
			}
			last = v
		}
	}()

	wg.Wait()
	close(stop)
	assert.True(t, <-readerDone, "version went backwards")

	total := 0
	for _, n := range adoptions {
		total += n
	}
	assert.Equal(t, uint64(total), sc.Version(), "one version step per adoption")
	assert.Equal(t, 1+perWriter+writers-1, sc.Summary().Length)
}
