// sliceguard command entry point
//
// Configuration comes from SLICEGUARD_* environment variables or an
// optional YAML file named by SLICEGUARD_CONFIG_FILE; commands and their
// flags are handled by the Orpheus CLI layer.

package main

import (
	"fmt"
	"os"

	sliceguard "github.com/printforge/sliceguard"
	"github.com/printforge/sliceguard/cmd/cli"
)

func main() {
	cm := sliceguard.NewConfigManager("sliceguard").
		SetDescription("Sandboxed profile management and slicing for an external slicer").
		SetVersion("1.0.0")

	// Commands belong to Orpheus; only environment and config-file
	// discovery happens here.
	if err := cm.Parse(nil); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", sliceguard.LabelInternalError, err)
		os.Exit(1)
	}

	config, err := cm.BuildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", sliceguard.WireLabel(err), err)
		os.Exit(1)
	}

	svc, err := sliceguard.NewService(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", sliceguard.WireLabel(err), err)
		os.Exit(1)
	}
	defer svc.Close()

	if err := cli.NewManager(svc).Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", sliceguard.WireLabel(err), err)
		os.Exit(1)
	}
}
