package skeleton

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// ProgressFunc receives the number of slices scanned so far during the
// candidate scan of a sub-pass. Calls are serialized.
type ProgressFunc func(completedSlices, totalSlices int)

// Logger receives per-pass diagnostics.
type Logger interface {
	Debugf(format string, args ...interface{})
}

// Options configure a Thinner.
type Options struct {
	// Workers is the number of goroutines scanning for border point
	// candidates. Values below 2 scan sequentially. The deletion re-check
	// always runs on a single goroutine.
	Workers int

	// Progress is optional.
	Progress ProgressFunc

	// Logger is optional.
	Logger Logger
}

// PassStats describes one direction sub-pass.
type PassStats struct {
	Cycle      int
	Direction  Direction
	Candidates int
	Removed    int
}

// Result reports what a thinning run did.
type Result struct {
	// Cycles is the number of six-direction cycles run, including the
	// final cycle that removed nothing.
	Cycles int

	// Removed is the total number of deleted voxels.
	Removed int

	Passes []PassStats
}

// Summary returns the mean and standard deviation of the number of voxels
// removed per sub-pass.
func (r *Result) Summary() (mean, std float64) {
	if len(r.Passes) == 0 {
		return 0, 0
	}
	removed := make([]float64, len(r.Passes))
	for i, p := range r.Passes {
		removed[i] = float64(p.Removed)
	}
	if len(removed) == 1 {
		return removed[0], 0
	}
	return stat.MeanStdDev(removed, nil)
}

// Thinner runs the directional thinning loop. A Thinner reuses its border
// point list between sub-passes and must not be used by several goroutines
// at once.
type Thinner struct {
	opts Options

	// borderPoints is the border point list of the current sub-pass.
	borderPoints []Point
}

// NewThinner creates a Thinner with the given options.
func NewThinner(opts Options) *Thinner {
	return &Thinner{opts: opts}
}

// Thin replaces the binary object in v by its skeleton. Voxels must be 0 or
// 1. The result is deterministic.
func Thin(v *Volume) {
	// A background context never cancels, so there is no error to report.
	_, _ = NewThinner(Options{}).Thin(context.Background(), v)
}

// Thin replaces the binary object in v by its skeleton and reports per-pass
// statistics. The context is checked between sub-passes; on cancellation
// v holds the state after the last completed sub-pass, which has the same
// topology as the input.
func (t *Thinner) Thin(ctx context.Context, v *Volume) (*Result, error) {
	res := &Result{}

	unchangedBorders := 0
	for unchangedBorders < len(Directions) {
		unchangedBorders = 0
		res.Cycles++

		for _, dir := range Directions {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if len(t.borderPoints) != 0 {
				panic("skeleton: border point list not empty at start of sub-pass")
			}

			points, err := t.collectBorderPoints(ctx, v, dir)
			if err != nil {
				return res, err
			}
			t.borderPoints = points
			removed := recheck(v, t.borderPoints)

			res.Passes = append(res.Passes, PassStats{
				Cycle:      res.Cycles,
				Direction:  dir,
				Candidates: len(t.borderPoints),
				Removed:    removed,
			})
			res.Removed += removed
			if t.opts.Logger != nil {
				t.opts.Logger.Debugf("thinning cycle %d (%s): %d candidates, %d removed",
					res.Cycles, dir, len(t.borderPoints), removed)
			}

			t.borderPoints = t.borderPoints[:0]
			if removed == 0 {
				unchangedBorders++
			}
		}
	}
	return res, nil
}

// collectBorderPoints returns the deletable border points of direction dir
// in raster order. Slabs of slices are scanned concurrently when more than
// one worker is configured; slab results are joined in z order so the list
// does not depend on scheduling.
func (t *Thinner) collectBorderPoints(ctx context.Context, v *Volume, dir Direction) ([]Point, error) {
	depth := v.Depth()
	workers := t.opts.Workers
	if workers > depth {
		workers = depth
	}

	var mu sync.Mutex
	done := 0
	sliceDone := func() {
		if t.opts.Progress == nil {
			return
		}
		mu.Lock()
		done++
		t.opts.Progress(done, depth)
		mu.Unlock()
	}

	if workers < 2 {
		points := t.borderPoints
		for z := 0; z < depth; z++ {
			points = scanSlice(v, dir, z, points)
			sliceDone()
		}
		return points, nil
	}

	slabs := make([][]Point, workers)
	slabDepth := (depth + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		i := i
		z0 := i * slabDepth
		z1 := min(z0+slabDepth, depth)
		g.Go(func() error {
			var points []Point
			for z := z0; z < z1; z++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				points = scanSlice(v, dir, z, points)
				sliceDone()
			}
			slabs[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := t.borderPoints
	for _, slab := range slabs {
		points = append(points, slab...)
	}
	return points, nil
}

// scanSlice appends the border point candidates of slice z to points.
func scanSlice(v *Volume, dir Direction, z int, points []Point) []Point {
	for y := 0; y < v.Height(); y++ {
		for x := 0; x < v.Width(); x++ {
			if v.Get(x, y, z) != 1 {
				continue
			}
			if v.AxisNeighbor(x, y, z, dir) > 0 {
				continue
			}
			if isDeletable(v.Neighborhood(x, y, z)) {
				points = append(points, Point{X: x, Y: y, Z: z})
			}
		}
	}
	return points
}

// isDeletable screens a border point: arc ends are kept, and the point must
// be both Euler invariant and simple.
func isDeletable(n Neighborhood) bool {
	if n[Center] != 1 {
		panic("skeleton: neighborhood center is not the voxel under test")
	}
	if n.CountForeground() == 1 {
		return false
	}
	return IsEulerInvariant(n) && IsSimplePoint(n)
}

// recheck deletes the candidates one at a time, in list order, restoring
// any point that is no longer simple once the earlier deletions of the same
// sub-pass are applied. It returns the number of deleted voxels.
func recheck(v *Volume, points []Point) int {
	removed := 0
	for _, p := range points {
		v.Set(p.X, p.Y, p.Z, 0)
		if IsSimplePoint(v.Neighborhood(p.X, p.Y, p.Z)) {
			removed++
		} else {
			v.Set(p.X, p.Y, p.Z, 1)
		}
	}
	return removed
}
