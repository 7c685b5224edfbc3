// Package sliceguard is the access-control and execution-safety core of a
// slicer tool server: it confines every file operation to two allowed
// roots, validates untrusted filenames, classifies failures into a closed
// typed taxonomy and drives the external slicer binary without any shell
// interpretation step.
//
// # Architecture Overview
//
// The core consists of seven cooperating pieces:
//  1. Sandbox: lexical two-root path confinement, the single trust boundary
//  2. Filename validation: an independent allowlist gate for leaf names
//  3. SafeFS: whole-file I/O that routes every path through the sandbox
//  4. Error taxonomy: AccessDenied / NotFound / ParseFailure / ProcessFailure
//  5. Extractors: strict JSON profiles, tolerant trailing G-code metadata
//  6. SlicerRunner: argv-vector subprocess invocation with a hard timeout
//  7. Audit log: best-effort append-only tuning history (JSONL or SQLite)
//
// A caller-supplied name flows through ValidateName, then Sandbox.Resolve,
// then SafeFS; raw bytes flow into ParseProfile or ExtractGcodeMetadata;
// for slicing, resolved paths become elements of the argument vector the
// SlicerRunner hands to the binary.
//
// Quick start:
//
//	svc, err := sliceguard.NewService(&sliceguard.Config{
//		WorkDir:      "/var/lib/printfarm/work",
//		SettingsDir:  "/var/lib/printfarm/settings",
//		SlicerBinary: "/usr/local/bin/slicer",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer svc.Close()
//
//	outcome, err := svc.Slice(ctx, sliceguard.SliceJob{
//		Model:           "benchy.stl",
//		MachineProfile:  "voron-350",
//		FilamentProfile: "petg-black",
//	})
//
// Every error the operations return answers to exactly one wire label via
// WireLabel; anything unclassified maps to the internal-error fallback so
// policy rejections and bugs stay distinguishable.
package sliceguard
