// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	"github.com/pierrec/lz4"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/utility/kar"
)

// Shader files looked up in the shader directory
const (
	VertexShaderFile   = "vert.spv"
	FragmentShaderFile = "frag.spv"
)

// lz4 frame magic number, little endian
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// NewShaderBox returns the shader directory as a box
func NewShaderBox(dir string) (packd.Finder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, core.ShaderLoadError(errors.Wrapf(err, "shader directory %s", dir))
	}
	return packr.NewBox(abs), nil
}

// ShaderArchiveExt marks a shader source that is a kar archive
const ShaderArchiveExt = ".kar"

// OpenShaderSource opens path as a kar archive when it has the archive
// extension, as a shader directory otherwise. The returned function
// releases the source.
func OpenShaderSource(path string) (packd.Finder, func() error, error) {
	if !strings.EqualFold(filepath.Ext(path), ShaderArchiveExt) {
		box, err := NewShaderBox(path)
		return box, func() error { return nil }, err
	}
	ar, err := kar.OpenFile(path)
	if err != nil {
		return nil, nil, core.ShaderLoadError(errors.Wrap(err, "shader archive"))
	}
	return ar, ar.Close, nil
}

// LoadShaderCode reads a compiled shader. Files may be stored as lz4 frames.
// The code must be a whole number of 32-bit words.
func LoadShaderCode(source packd.Finder, name string) ([]byte, error) {
	code, err := source.Find(name)
	if err != nil {
		return nil, core.ShaderLoadError(errors.Wrapf(err, "failed to open %s", name))
	}

	if bytes.HasPrefix(code, lz4Magic) {
		if code, err = io.ReadAll(lz4.NewReader(bytes.NewReader(code))); err != nil {
			return nil, core.ShaderLoadError(errors.Wrapf(err, "failed to decompress %s", name))
		}
	}

	if len(code) == 0 {
		return nil, core.ShaderLoadError(errors.Newf("%s is empty", name))
	}
	if len(code)%4 != 0 {
		return nil, core.ShaderLoadError(errors.Newf("%s: size %d is not a multiple of 4", name, len(code)))
	}
	return code, nil
}

// Shader is a compiled shader stage
type Shader struct {
	Name   string
	Type   core.ShaderType
	Module vk.ShaderModule
}

func (s Shader) stageInfo() vk.PipelineShaderStageCreateInfo {
	stage := vk.ShaderStageVertexBit
	if s.Type == core.FragmentShaderType {
		stage = vk.ShaderStageFragmentBit
	}
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.Module,
		PName:  "main\x00",
	}
}

// NewVulkanShader wraps shader code into a shader module
func NewVulkanShader(dev vk.Device, name string, shaderType core.ShaderType, code []byte) (Shader, error) {
	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    core.SliceUint32(code),
	}

	var module vk.ShaderModule
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateShaderModule", vk.CreateShaderModule(dev, &smci, nil, &module)); err != nil {
		return Shader{}, errors.Wrapf(err, "%s shader", shaderType)
	}
	return Shader{
		Name:   name,
		Type:   shaderType,
		Module: module,
	}, nil
}

// Destroy destroys the shader module
func (s Shader) Destroy(dev vk.Device) {
	vk.DestroyShaderModule(dev, s.Module, nil)
}

// shaderCode holds the raw code of both stages
type shaderCode struct {
	vertex, fragment []byte
}

func loadShaderPair(source packd.Finder) (shaderCode, error) {
	var (
		pair shaderCode
		err  error
	)
	if pair.vertex, err = LoadShaderCode(source, VertexShaderFile); err != nil {
		return pair, err
	}
	if pair.fragment, err = LoadShaderCode(source, FragmentShaderFile); err != nil {
		return pair, err
	}
	return pair, nil
}
