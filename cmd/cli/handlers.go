// Command handlers for the sliceguard CLI
//
// Each handler validates nothing itself beyond argument presence: names,
// categories and paths are judged by the core, and every error that comes
// back already carries one of the four wire labels.

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"

	sliceguard "github.com/printforge/sliceguard"
)

// handleProfileList lists the profile names in one category.
func (m *Manager) handleProfileList(ctx *orpheus.Context) error {
	category := ctx.GetArg(0)
	if category == "" {
		return errors.New("CLI_USAGE", "usage: profile list <category>")
	}

	names, err := m.svc.Profiles().ListProfiles(category)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

// handleProfileGet prints a profile document, or one key of it.
func (m *Manager) handleProfileGet(ctx *orpheus.Context) error {
	category := ctx.GetArg(0)
	name := ctx.GetArg(1)
	if category == "" || name == "" {
		return errors.New("CLI_USAGE", "usage: profile get <category> <name> [--key=]")
	}

	doc, err := m.svc.Profiles().LoadProfile(category, name)
	if err != nil {
		return err
	}

	if key := ctx.GetFlagString("key"); key != "" {
		value := doc.Value(key)
		if !value.Exists() {
			return errors.New("CLI_USAGE", fmt.Sprintf("key %q not found in %s/%s", key, category, name))
		}
		fmt.Println(value.String())
		return nil
	}

	fmt.Println(string(doc.Raw))
	return nil
}

// handleProfileSet overwrites one top-level key, optionally as a dry run
// that leaves the original untouched.
func (m *Manager) handleProfileSet(ctx *orpheus.Context) error {
	category := ctx.GetArg(0)
	name := ctx.GetArg(1)
	key := ctx.GetArg(2)
	rawValue := ctx.GetArg(3)
	if category == "" || name == "" || key == "" || rawValue == "" {
		return errors.New("CLI_USAGE", "usage: profile set <category> <name> <key> <value> [--dry-run]")
	}

	dryRun := ctx.GetFlagBool("dry-run")
	target, err := m.svc.Profiles().UpdateProfile(category, name,
		map[string]interface{}{key: parseValue(rawValue)}, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Dry run: wrote %s\n", target)
	} else {
		fmt.Printf("Set %s = %s in %s\n", key, rawValue, target)
	}
	return nil
}

// handleProfileImport stores an external JSON document as a profile.
func (m *Manager) handleProfileImport(ctx *orpheus.Context) error {
	category := ctx.GetArg(0)
	name := ctx.GetArg(1)
	file := ctx.GetArg(2)
	if category == "" || name == "" || file == "" {
		return errors.New("CLI_USAGE", "usage: profile import <category> <name> <file>")
	}

	data, err := m.svc.FS().ReadFile(file)
	if err != nil {
		return err
	}
	if err := m.svc.Profiles().SaveProfile(category, name, data); err != nil {
		return err
	}
	fmt.Printf("Imported %s into %s/%s\n", file, category, name)
	return nil
}

// handleSlice runs the external slicer over a model.
func (m *Manager) handleSlice(ctx *orpheus.Context) error {
	model := ctx.GetArg(0)
	if model == "" {
		return errors.New("CLI_USAGE", "usage: slice <model> [--output=] [--machine=] [--filament=] [--process=]")
	}

	outcome, err := m.svc.Slice(context.Background(), sliceguard.SliceJob{
		Model:           model,
		Output:          ctx.GetFlagString("output"),
		MachineProfile:  ctx.GetFlagString("machine"),
		FilamentProfile: ctx.GetFlagString("filament"),
		ProcessProfile:  ctx.GetFlagString("process"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Sliced %s -> %s (job %s)\n", model, outcome.OutputPath, outcome.JobID)
	return nil
}

// handleGcodeInspect prints the trailing metadata of a G-code file as JSON.
func (m *Manager) handleGcodeInspect(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New("CLI_USAGE", "usage: gcode inspect <file>")
	}

	meta, err := m.svc.InspectGcode(path)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// handleValidate prints the detailed configuration validation result.
func (m *Manager) handleValidate(ctx *orpheus.Context) error {
	result := m.svc.Config().ValidateDetailed()
	fmt.Println(result.String())
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	if !result.Valid {
		return errors.New("CLI_USAGE", "configuration is invalid")
	}
	return nil
}

// handleInfo shows the configured trust boundary.
func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	cfg := m.svc.Config()
	fmt.Printf("work root:     %s\n", cfg.WorkDir)
	fmt.Printf("settings root: %s\n", cfg.SettingsDir)
	fmt.Printf("slicer binary: %s\n", cfg.SlicerBinary)
	fmt.Printf("slice timeout: %s\n", cfg.SliceTimeout)
	fmt.Printf("audit output:  %s\n", cfg.AuditOutput)
	return nil
}
