package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/essalab/essa/internal/enm"
	"github.com/essalab/essa/schema"
)

// scan runs the reference model and the per-residue perturbation loop,
// returning the matched mode ensemble and the effective parameters (with
// the recorded cutoff filled in). The scan is all or nothing: the first
// failing residue cancels the remaining workers and fails the whole scan.
func (a *Analysis) scan(ctx context.Context, params schema.ScanParams, workers int, progress func(done, total int)) (*schema.ModeEnsemble, schema.ScanParams, error) {
	nRes := a.ca.Len()
	if nRes < 2 {
		return nil, params, fmt.Errorf("%w: need at least 2 Cα atoms, have %d", ErrModelBuild, nRes)
	}

	ref := enm.New(params.ENM, a.structure.Title)
	if err := ref.Build(a.ca.Coords(), params.Cutoff, params.Gamma); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}
	// Every perturbed model is built with the reference cutoff, so an
	// auto-selected default must be recorded before the loop starts.
	params.Cutoff = ref.Cutoff
	if err := ref.CalcModes(params.NModes); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}
	if err := ref.CheckReference(params.NModes); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrNumeric, err)
	}

	ensemble := schema.NewModeEnsemble(a.structure.Title, params.NModes, nRes, enm.DOFPerNode(params.ENM))
	ensemble.Preallocate(nRes + 1)
	if err := ensemble.Set(0, ref.ModeSet("ref")); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}

	if workers > nRes {
		workers = nRes
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	var done atomic.Int64
	var firstErr error
	var errOnce sync.Once

	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pos := range jobs {
				if scanCtx.Err() != nil {
					return
				}
				if err := a.scanResidue(params, pos, ensemble); err != nil {
					fail(err)
					return
				}
				n := done.Add(1)
				if progress != nil {
					progress(int(n), nRes)
				}
			}
		}()
	}

feed:
	for pos := 0; pos < nRes; pos++ {
		select {
		case jobs <- pos:
		case <-scanCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, params, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, params, err
	}
	if err := ensemble.Match(); err != nil {
		return nil, params, fmt.Errorf("%w: %v", ErrModelBuild, err)
	}
	return ensemble, params, nil
}

// scanResidue perturbs a single residue: a full model over the Cα atoms
// plus the residue's heavy atoms is reduced back onto the Cα subset, its
// modes computed and stored at the residue's ensemble position.
func (a *Analysis) scanResidue(params schema.ScanParams, pos int, ensemble *schema.ModeEnsemble) error {
	ri := a.ca.Atom(pos).ResIndex

	// Cα atoms of every residue plus all heavy atoms of the perturbed one.
	perturbed := a.heavy.Refine("perturbed", func(at *schema.Atom) bool {
		return at.IsCalpha() || at.ResIndex == ri
	})

	label := fmt.Sprintf("res_%d", ri)
	model := enm.New(params.ENM, label)
	if err := model.Build(perturbed.Coords(), params.Cutoff, params.Gamma); err != nil {
		return fmt.Errorf("%w: residue %d: %v", ErrModelBuild, ri, err)
	}

	// Positions of the Cα atoms within the perturbed selection; selection
	// order is structure order, so these align with the anchor Cα order.
	keep := make([]int, 0, a.ca.Len())
	for i := 0; i < perturbed.Len(); i++ {
		if perturbed.Atom(i).IsCalpha() {
			keep = append(keep, i)
		}
	}
	if len(keep) != a.ca.Len() {
		return fmt.Errorf("%w: residue %d: perturbed selection has %d Cα atoms, want %d",
			ErrModelBuild, ri, len(keep), a.ca.Len())
	}

	reduced, err := enm.Reduce(model, keep)
	if err != nil {
		return fmt.Errorf("%w: residue %d: %v", ErrModelBuild, ri, err)
	}
	if err := reduced.CalcModes(params.NModes); err != nil {
		return fmt.Errorf("%w: residue %d: %v", ErrModelBuild, ri, err)
	}
	return ensemble.Set(pos+1, reduced.ModeSet(label))
}
