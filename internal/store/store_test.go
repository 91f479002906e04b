package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChevesR/ibit-strategy-v5/internal/model"
)

func TestStore(t *testing.T) {
	s := New()
	assert.Nil(t, s.Snapshot())
	assert.Nil(t, s.Portfolio())

	snap := &model.MarketSnapshot{ReferencePrice: 1}
	s.SetSnapshot(snap)
	assert.Same(t, snap, s.Snapshot())

	p := &model.Portfolio{Source: "a.csv"}
	s.SetPortfolio(p)
	assert.Same(t, p, s.Portfolio())
	s.ClearPortfolio()
	assert.Nil(t, s.Portfolio())
}

func TestStore_Concurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetSnapshot(&model.MarketSnapshot{ReferencePrice: float64(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.NotNil(t, s.Snapshot())
}
