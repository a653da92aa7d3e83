package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/schema"
)

// State names the stages of the analysis pipeline. Transitions are strictly
// ordered; a step invoked out of order fails with ErrSequence instead of a
// nil-attribute failure downstream.
type State string

// All pipeline states.
const (
	Unconfigured   State = "unconfigured"
	Configured     State = "configured"
	Scanned        State = "scanned"
	PocketsScanned State = "pockets-scanned"
	PocketsRanked  State = "pockets-ranked"
)

// Analysis is the ESSA pipeline state machine:
//
//	Unconfigured --Setup--> Configured --ScanResidues--> Scanned
//	  --ScanPockets--> PocketsScanned --RankPockets--> PocketsRanked
//
// Each transition consumes and produces immutable value objects; getters
// return copies so callers cannot corrupt pipeline state.
type Analysis struct {
	state State

	structure *schema.Structure
	heavy     *schema.Selection
	ca        *schema.Selection

	ligandContacts map[string][]int // nil when no ligand configured

	params   schema.ScanParams
	ensemble *schema.ModeEnsemble
	result   *schema.ScanResult

	features *schema.PocketFeatureTable
	pocketZ  *schema.PocketZScoreTable
	ranks    *schema.PocketRankTable
}

// NewAnalysis creates an unconfigured analysis for a parsed structure.
func NewAnalysis(s *schema.Structure) *Analysis {
	return &Analysis{state: Unconfigured, structure: s}
}

// State returns the current pipeline state.
func (a *Analysis) State() State { return a.state }

func (a *Analysis) require(want State, op string) error {
	if a.state != want {
		return fmt.Errorf("%w: %s requires state %q, current state is %q", ErrSequence, op, want, a.state)
	}
	return nil
}

// Setup derives the heavy-atom and Cα selections and, when a ligand spec is
// given, the map of Cα residue indices within dist of each ligand. It moves
// the analysis from Unconfigured to Configured.
func (a *Analysis) Setup(ligandSpec string, dist float64) error {
	if err := a.require(Unconfigured, "Setup"); err != nil {
		return err
	}
	if a.structure == nil || a.structure.NumAtoms() == 0 {
		return fmt.Errorf("%w: structure has no atoms", ErrSetup)
	}

	a.heavy = a.structure.Select("heavy", func(at *schema.Atom) bool {
		return at.IsHeavy() && !at.Hetero
	})
	if a.heavy.Len() == 0 {
		return fmt.Errorf("%w: structure has no protein heavy atoms", ErrSetup)
	}
	a.ca = a.heavy.Refine("calpha", func(at *schema.Atom) bool {
		return at.IsCalpha()
	})
	if a.ca.Len() == 0 {
		return fmt.Errorf("%w: structure has no Cα atoms", ErrSetup)
	}

	if ligandSpec != "" {
		if dist <= 0 {
			dist = schema.DefaultLigandDist
		}
		ligands, err := schema.ParseLigandSpec(ligandSpec)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSetup, err)
		}
		a.ligandContacts = make(map[string][]int, len(ligands))
		for _, lig := range ligands {
			key := fmt.Sprintf("%s%d", lig.Chain, lig.ResNum)
			contacts, err := a.ligandContactIndices(lig, dist)
			if err != nil {
				return fmt.Errorf("%w: ligand %s: %v", ErrSetup, key, err)
			}
			a.ligandContacts[key] = contacts
		}
	}

	a.state = Configured
	return nil
}

// ligandContactIndices finds the Cα residue indices of protein residues
// with any heavy atom within dist of any atom of the given ligand.
func (a *Analysis) ligandContactIndices(lig schema.ChainRes, dist float64) ([]int, error) {
	ligSel := a.structure.Select("ligand", func(at *schema.Atom) bool {
		return at.Chain == lig.Chain && at.ResNum == lig.ResNum
	})
	if ligSel.Len() == 0 {
		return nil, fmt.Errorf("no atoms for chain %s residue %d", lig.Chain, lig.ResNum)
	}
	ligCoords := ligSel.Coords()
	dist2 := dist * dist

	// Residues with a Cα are the only ones the scan reports on.
	caRes := make(map[int]bool, a.ca.Len())
	for _, ri := range a.ca.ResIndices() {
		caRes[ri] = true
	}

	hit := make(map[int]bool)
	for i := 0; i < a.heavy.Len(); i++ {
		at := a.heavy.Atom(i)
		if at.Chain == lig.Chain && at.ResNum == lig.ResNum {
			continue // the ligand itself
		}
		if !caRes[at.ResIndex] || hit[at.ResIndex] {
			continue
		}
		for _, lc := range ligCoords {
			dx := at.Coord[0] - lc[0]
			dy := at.Coord[1] - lc[1]
			dz := at.Coord[2] - lc[2]
			if dx*dx+dy*dy+dz*dz <= dist2 {
				hit[at.ResIndex] = true
				break
			}
		}
	}
	out := make([]int, 0, len(hit))
	for ri := range hit {
		out = append(out, ri)
	}
	sort.Ints(out)
	return out, nil
}

// ScanResidues runs the perturbation scan and the score engine, moving the
// analysis from Configured to Scanned.
func (a *Analysis) ScanResidues(ctx context.Context, params schema.ScanParams, workers int, progress func(done, total int)) error {
	if err := a.require(Configured, "ScanResidues"); err != nil {
		return err
	}
	if params.NModes <= 0 {
		params.NModes = schema.DefaultNModes
	}
	if params.Gamma == 0 {
		params.Gamma = schema.DefaultGamma
	}
	if params.ENM == "" {
		params.ENM = schema.GNM
	}
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	ensemble, effective, err := a.scan(ctx, params, workers, progress)
	if err != nil {
		return err
	}
	a.params = effective
	a.ensemble = ensemble

	shifts, err := meanEigvalShifts(ensemble)
	if err != nil {
		return err
	}
	residues := a.scannedResidues()
	a.result = &schema.ScanResult{
		Title:          a.structure.Title,
		Params:         effective,
		Residues:       residues,
		MeanShifts:     shifts,
		Zscores:        zscores(shifts),
		LigandContacts: a.ligandContacts,
		Lookup:         schema.ResidueLookup(residues),
	}

	a.state = Scanned
	return nil
}

// scannedResidues identifies the scanned residues in Cα-selection order.
func (a *Analysis) scannedResidues() []schema.ResidueID {
	out := make([]schema.ResidueID, a.ca.Len())
	for i := 0; i < a.ca.Len(); i++ {
		at := a.ca.Atom(i)
		out[i] = schema.ResidueID{Chain: at.Chain, ResNum: at.ResNum, ResIndex: at.ResIndex}
	}
	return out
}

// RestoreScan installs a previously computed scan result (from the scan
// store) without re-running the perturbation loop. The ensemble is not
// restored; ensemble-dependent getters remain empty for restored scans.
func (a *Analysis) RestoreScan(res *schema.ScanResult) error {
	if err := a.require(Configured, "RestoreScan"); err != nil {
		return err
	}
	if len(res.Zscores) != a.ca.Len() {
		return fmt.Errorf("%w: stored scan has %d residues, structure has %d Cα atoms",
			ErrSetup, len(res.Zscores), a.ca.Len())
	}
	a.params = res.Params
	a.result = res
	a.state = Scanned
	return nil
}

// ScanPockets maps detector output onto the ESSA z-scores, moving the
// analysis from Scanned to PocketsScanned. A nil or unavailable detector
// is a soft failure: the caller receives ErrToolMissing and the pipeline
// stays in Scanned.
func (a *Analysis) ScanPockets(pockets []schema.Pocket) error {
	if err := a.require(Scanned, "ScanPockets"); err != nil {
		return err
	}
	if len(pockets) == 0 {
		return fmt.Errorf("%w: detector returned no pockets", ErrToolMissing)
	}
	features, pocketZ, err := buildPocketTables(pockets, a.result)
	if err != nil {
		return err
	}
	a.features = features
	a.pocketZ = pocketZ
	a.state = PocketsScanned
	return nil
}

// RankPockets applies the adaptive LHD filter and the two-criterion
// ranking, moving the analysis from PocketsScanned to PocketsRanked.
func (a *Analysis) RankPockets() error {
	if err := a.require(PocketsScanned, "RankPockets"); err != nil {
		return err
	}
	a.ranks = rankPockets(a.pocketZ)
	a.state = PocketsRanked
	return nil
}

// Result returns the scan result. Valid from Scanned onwards.
func (a *Analysis) Result() (*schema.ScanResult, error) {
	if a.result == nil {
		return nil, fmt.Errorf("%w: Result requires a completed scan", ErrSequence)
	}
	return a.result, nil
}

// Ensemble returns the mode ensemble of the last scan, or nil for scans
// restored from the store.
func (a *Analysis) Ensemble() *schema.ModeEnsemble { return a.ensemble }

// LigandResidueIndices returns the residue indices interacting with each
// configured ligand. Calling it without a ligand is a soft ErrNoLigand.
func (a *Analysis) LigandResidueIndices() (map[string][]int, error) {
	if a.state == Unconfigured {
		return nil, fmt.Errorf("%w: LigandResidueIndices requires Setup", ErrSequence)
	}
	if a.ligandContacts == nil {
		return nil, ErrNoLigand
	}
	return a.ligandContacts, nil
}

// PocketFeatures returns the parsed pocket feature table. Valid from
// PocketsScanned onwards.
func (a *Analysis) PocketFeatures() (*schema.PocketFeatureTable, error) {
	if a.features == nil {
		return nil, fmt.Errorf("%w: PocketFeatures requires ScanPockets", ErrSequence)
	}
	return a.features, nil
}

// PocketZScores returns the per-pocket z-score table. Valid from
// PocketsScanned onwards.
func (a *Analysis) PocketZScores() (*schema.PocketZScoreTable, error) {
	if a.pocketZ == nil {
		return nil, fmt.Errorf("%w: PocketZScores requires ScanPockets", ErrSequence)
	}
	return a.pocketZ, nil
}

// PocketRanks returns the pocket rank table. Valid only in PocketsRanked.
func (a *Analysis) PocketRanks() (*schema.PocketRankTable, error) {
	if a.ranks == nil {
		return nil, fmt.Errorf("%w: PocketRanks requires RankPockets", ErrSequence)
	}
	return a.ranks, nil
}

// Heavy returns the heavy-atom selection. Valid from Configured onwards.
func (a *Analysis) Heavy() *schema.Selection { return a.heavy }

// Calpha returns the Cα selection. Valid from Configured onwards.
func (a *Analysis) Calpha() *schema.Selection { return a.ca }
