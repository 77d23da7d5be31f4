package command

import (
	"flag"

	"github.com/mitchellh/cli"
)

// FlagSetFlags is an enum to define what flags are present in the default
// FlagSet returned by Meta.FlagSet.
type FlagSetFlags uint

const (
	// FlagSetNone returns a FlagSet with no flags preconfigured.
	FlagSetNone FlagSetFlags = 0

	// FlagSetClient returns a FlagSet with the flags every client command
	// carries.
	FlagSetClient FlagSetFlags = 1 << iota
)

// Meta contains the meta-options and functionality that nearly every command
// inherits.
type Meta struct {
	UI cli.Ui
}

// FlagSet returns a FlagSet with the common flags that every command
// implements. The exact behavior of FlagSet can be configured using the
// flags as the second parameter.
func (m *Meta) FlagSet(n string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	// Discard flag parsing output; commands surface usage through their
	// Help output instead.
	f.SetOutput(discardWriter{})

	return f
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
