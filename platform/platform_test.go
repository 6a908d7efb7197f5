// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/platform"
)

func TestOpenUnknownBackend(t *testing.T) {
	c := qt.New(t)

	cfg := core.DefaultConfiguration().Window
	cfg.Backend = "wayland"

	window, err := platform.Open(cfg)
	c.Assert(window, qt.IsNil)
	c.Assert(err, qt.ErrorMatches, `unknown window backend "wayland"`)
	c.Assert(errors.Is(err, core.ErrEnvironment), qt.IsTrue)
}
