package schema

// Custom string types for type safety.
type (
	// ENMKind represents the elastic network model variant.
	ENMKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the scan store.
	DatabaseBackend string
)

// All elastic network model kinds supported.
const (
	GNM ENMKind = "gnm" // default, isotropic
	ANM ENMKind = "anm" // anisotropic
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All scan store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Default model parameters. Cutoffs are the standard per-kind defaults and
// apply only when the user does not override them.
const (
	DefaultNModes     = 10
	DefaultGNMCutoff  = 10.0
	DefaultANMCutoff  = 15.0
	DefaultLigandDist = 4.5
	DefaultGamma      = 1.0
)

// LHDFeature is the pocket feature column used for hydrophobic density
// screening. The name matches the detector's output verbatim.
const LHDFeature = "Local hydrophobic density Score"

// ValidENMKinds lists all valid model kinds.
var ValidENMKinds = map[ENMKind]struct{}{
	GNM: {},
	ANM: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid scan store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
