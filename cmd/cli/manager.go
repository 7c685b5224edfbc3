// Package cli provides the command-line interface for the sliceguard core.
//
// The CLI is the reference "automated caller": every command maps onto
// exactly one core operation (profile list/get/set, G-code inspection,
// slice invocation) and never touches the filesystem or the slicer binary
// except through the core.
//
// Built on the Orpheus framework with git-style subcommands.

package cli

import (
	"github.com/agilira/orpheus/pkg/orpheus"

	sliceguard "github.com/printforge/sliceguard"
)

// Manager routes CLI commands onto a sliceguard Service.
type Manager struct {
	app *orpheus.App
	svc *sliceguard.Service
}

// NewManager creates the CLI manager over an already-constructed service.
func NewManager(svc *sliceguard.Service) *Manager {
	app := orpheus.New("sliceguard").
		SetDescription("Sandboxed profile management and slicing for an external slicer").
		SetVersion("1.0.0")

	manager := &Manager{app: app, svc: svc}
	manager.setupProfileCommands()
	manager.setupSliceCommands()
	manager.setupUtilityCommands()
	return manager
}

// Run executes the CLI application with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupProfileCommands configures the 'profile' command group.
func (m *Manager) setupProfileCommands() {
	profileCmd := orpheus.NewCommand("profile", "Profile document operations")

	// profile list <category>
	profileCmd.Subcommand("list", "List profiles in a category", m.handleProfileList)

	// profile get <category> <name> [--key=]
	getCmd := profileCmd.Subcommand("get", "Show a profile document", m.handleProfileGet)
	getCmd.AddFlag("key", "k", "", "Print only this top-level key")

	// profile set <category> <name> <key> <value> [--dry-run]
	setCmd := profileCmd.Subcommand("set", "Overwrite one top-level profile key", m.handleProfileSet)
	setCmd.AddBoolFlag("dry-run", "d", false, "Write a sibling <name>_modified.json instead of overwriting")

	// profile import <category> <name> <file>
	profileCmd.Subcommand("import", "Import a JSON document as a profile", m.handleProfileImport)

	m.app.AddCommand(profileCmd)
}

// setupSliceCommands configures the 'slice' and 'gcode' commands.
func (m *Manager) setupSliceCommands() {
	sliceCmd := orpheus.NewCommand("slice", "Slice a model with the external slicer")
	sliceCmd.SetHandler(m.handleSlice)
	sliceCmd.AddFlag("output", "o", "", "Output G-code path (defaults to a generated name in the work dir)")
	sliceCmd.AddFlag("machine", "m", "", "Machine profile name")
	sliceCmd.AddFlag("filament", "f", "", "Filament profile name")
	sliceCmd.AddFlag("process", "p", "", "Process profile name")
	m.app.AddCommand(sliceCmd)

	gcodeCmd := orpheus.NewCommand("gcode", "Generated G-code operations")
	gcodeCmd.Subcommand("inspect", "Extract trailing metadata from a G-code file", m.handleGcodeInspect)
	m.app.AddCommand(gcodeCmd)
}

// setupUtilityCommands configures diagnostics commands.
func (m *Manager) setupUtilityCommands() {
	validateCmd := orpheus.NewCommand("validate", "Validate the active configuration")
	validateCmd.SetHandler(m.handleValidate)
	m.app.AddCommand(validateCmd)

	infoCmd := orpheus.NewCommand("info", "Show the configured roots and slicer binary")
	infoCmd.SetHandler(m.handleInfo)
	m.app.AddCommand(infoCmd)
}
