package main

import (
	"fmt"
	"os"
)

// runArm swaps instrumented copies into place. All .instrumented files
// already exist at this point, so a failure part-way cannot lose an
// original: the original is renamed to .original first and the
// instrumented copy only then takes its place.
func runArm(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path + ".original"); err == nil {
			return fmt.Errorf("%s.original already exists; disarm before re-arming", path)
		}
		if err := os.Rename(path, path+".original"); err != nil {
			return err
		}
		data, err := os.ReadFile(path + ".instrumented")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// runDisarm restores originals saved by --arm.
func runDisarm(paths []string, keepInstrumented bool) error {
	for _, path := range paths {
		if path == "--" {
			continue
		}
		original := path + ".original"
		if _, err := os.Stat(original); err != nil {
			return fmt.Errorf("%s not found; was %s armed?", original, path)
		}
		data, err := os.ReadFile(original)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		if err := os.Remove(original); err != nil {
			return err
		}
		if !keepInstrumented {
			if err := os.Remove(path + ".instrumented"); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}
