package mandel

import (
	"math"
	"runtime"
	"sync"
)

// Table is a palette precomputed for every integer escape value 0..maxIter.
// Lookups round the escape value, which trades a little banding in smooth
// mode for skipping the colour conversion per pixel.
type Table struct {
	maxIter int
	colors  []RGB
}

// NewTable evaluates p for every value in 0..maxIter. Entries are independent
// so the table is filled by up to workers goroutines; workers <= 0 means
// GOMAXPROCS.
func NewTable(p Palette, maxIter int, workers int) *Table {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	colors := make([]RGB, maxIter+1)
	chunk := (len(colors) + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < len(colors); lo += chunk {
		hi := min(lo+chunk, len(colors))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				colors[i] = p.Color(float64(i), maxIter)
			}
		}(lo, hi)
	}
	wg.Wait()

	return &Table{maxIter: maxIter, colors: colors}
}

// Len returns the number of entries, maxIter+1.
func (t *Table) Len() int { return len(t.colors) }

// Color implements Palette. maxIter is ignored in favour of the value the
// table was built for; Job.Validate rejects a table that does not match
// the job's evaluator.
func (t *Table) Color(v float64, _ int) RGB {
	if v >= float64(t.maxIter) {
		return t.colors[t.maxIter]
	}
	i := int(math.Round(v))
	// an escaped value must not round onto the in-set entry
	i = min(max(i, 0), t.maxIter-1)
	return t.colors[i]
}
