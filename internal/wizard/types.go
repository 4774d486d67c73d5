package wizard

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// WizardState represents the current step in the wizard flow
type WizardState int

const (
	StateWelcome WizardState = iota
	StateMetastoreType
	StateConnectionDetails
	StateTestConnection
	StateConversionDetails
	StateSummary
	StateCreating
	StateDone
	StateError
)

// WizardModel holds the state for the Bubble Tea wizard
type WizardModel struct {
	state WizardState

	// Current environment being configured
	env        EnvironmentInput
	conversion ConversionInput

	// Connection testing
	testingConnection    bool
	connectionTestResult string
	connectionError      error
	retryChoice          int // 0=retry, 1=edit, 2=quit

	// Input fields (using bubbletea textinput)
	inputs     []textinput.Model
	focusIndex int

	// Metastore backing database selection
	metastoreTypeIndex int

	// Validation
	errors map[string]string

	// Final output
	result *InitResult
	err    error

	// Terminal dimensions
	width  int
	height int
}

// EnvironmentInput holds user input for the metastore environment
type EnvironmentInput struct {
	Name          string
	MetastoreType string // "postgres", "sqlite", "libsql"

	// PostgreSQL fields
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string

	// SQLite fields
	FilePath string

	// libSQL fields
	URL       string
	AuthToken string
}

// ConversionInput holds user input for the default conversion target
type ConversionInput struct {
	DestinationDatabase string
	DestinationTable    string
	DataRoot            string
}

// InitResult contains the outcome of running the wizard
type InitResult struct {
	ConfigPath       string
	ConfigCreated    bool
	ConfigUpdated    bool
	EnvFile          string
	GitignoreUpdated bool
}

// MetastoreType represents a metastore backing database option
type MetastoreType struct {
	ID          string
	DisplayName string
	Description string
	Icon        string
}

// Available metastore backing databases
var MetastoreTypes = []MetastoreType{
	{
		ID:          "postgres",
		DisplayName: "PostgreSQL",
		Description: "standard Hive metastore backing database",
		Icon:        "🐘",
	},
	{
		ID:          "sqlite",
		DisplayName: "SQLite",
		Description: "local snapshot of the metastore schema",
		Icon:        "📁",
	},
	{
		ID:          "libsql",
		DisplayName: "libSQL/Turso",
		Description: "hosted metastore replica",
		Icon:        "🌐",
	},
}
