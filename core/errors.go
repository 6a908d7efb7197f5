// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Error kinds. Every error leaving this module is marked with one of them,
// test for them with errors.Is.
var (
	// ErrEnvironment marks a missing capability of the machine: no
	// suitable GPU, missing validation layers, API loader failure.
	ErrEnvironment = errors.New("environment error")

	// ErrResourceCreation marks a failed GPU object creation or allocation.
	ErrResourceCreation = errors.New("resource creation error")

	// ErrSurfaceObsolete marks an out-of-date or suboptimal swap-chain,
	// it is recovered from by rebuilding and never returned to callers.
	ErrSurfaceObsolete = errors.New("surface obsolete")

	// ErrTransientPresent marks an acquire or present failure that is
	// not recoverable by a rebuild.
	ErrTransientPresent = errors.New("transient present error")

	// ErrShaderLoad marks an unreadable or malformed shader binary.
	ErrShaderLoad = errors.New("shader load error")
)

// EnvironmentError marks err as an ErrEnvironment
func EnvironmentError(err error) error {
	return errors.Mark(err, ErrEnvironment)
}

// ResourceCreationError marks err as an ErrResourceCreation
func ResourceCreationError(err error) error {
	return errors.Mark(err, ErrResourceCreation)
}

// ShaderLoadError marks err as an ErrShaderLoad
func ShaderLoadError(err error) error {
	return errors.Mark(err, ErrShaderLoad)
}

// CheckResult turns a Vulkan result into an error of the given kind,
// annotated with the call that produced it. Success yields nil.
func CheckResult(kind error, call string, res vk.Result) error {
	err := vk.Error(res)
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "%s()", call), kind)
}

// IsSurfaceObsolete reports whether res means the swap-chain no longer
// matches the surface and must be rebuilt.
func IsSurfaceObsolete(res vk.Result) bool {
	return res == vk.ErrorOutOfDate || res == vk.Suboptimal
}
