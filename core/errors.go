package core

import "errors"

// Error kinds of the scan pipeline. Setup, model-build and numeric errors
// are fatal for the current scan; detector and ligand errors are soft and
// degrade to empty results with a warning.
var (
	// ErrSetup means the structure lacks required atom categories
	// (no protein, heavy or Cα atoms).
	ErrSetup = errors.New("structure setup failed")

	// ErrModelBuild means a model's interaction matrix could not be built
	// or decomposed (singular, degenerate, or too few atoms).
	ErrModelBuild = errors.New("model build failed")

	// ErrNumeric means a near-zero reference eigenvalue would make the
	// relative shift undefined.
	ErrNumeric = errors.New("numeric precondition violated")

	// ErrToolMissing means pocket ranking was requested but the external
	// detector is unavailable.
	ErrToolMissing = errors.New("pocket detector unavailable")

	// ErrNoLigand means a ligand-dependent getter was called without a
	// ligand having been configured.
	ErrNoLigand = errors.New("no ligand provided")

	// ErrSequence means a pipeline step was invoked out of order.
	ErrSequence = errors.New("operation out of order")
)
