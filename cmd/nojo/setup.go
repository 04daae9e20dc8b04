package main

import (
	"github.com/nojolabs/nojo/internal/version"
	"github.com/nojolabs/nojo/pkg/assets"
	"github.com/nojolabs/nojo/pkg/filesystem"
	"github.com/nojolabs/nojo/pkg/lifecycle"
	"github.com/nojolabs/nojo/pkg/paths"
	"github.com/nojolabs/nojo/pkg/types"
)

// newController wires the lifecycle controller for the resolved install
// root and refreshes the builtin profile sources.
func newController() (*lifecycle.Controller, types.Pather, error) {
	fs := filesystem.NewOS()
	p, err := paths.New(installDir)
	if err != nil {
		return nil, nil, err
	}
	if err := assets.Materialize(fs, p.ProfilesDir()); err != nil {
		return nil, nil, err
	}
	return lifecycle.New(fs, p, version.Version), p, nil
}
