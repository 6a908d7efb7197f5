// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestFullscreenModeWithoutMonitor(t *testing.T) {
	c := qt.New(t)

	monitor, width, height := fullscreenMode(nil, 1280, 720)
	c.Assert(monitor, qt.IsNil)
	c.Assert(width, qt.Equals, 1280)
	c.Assert(height, qt.Equals, 720)
}
