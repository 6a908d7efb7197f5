// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/packd"
	"github.com/pierrec/lz4"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/utility/kar"
)

// spirv starts with the SPIR-V magic number
var spirv = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

func compress(c *qt.C, data []byte) []byte {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Close(), qt.IsNil)
	return buf.Bytes()
}

func shaderBox(c *qt.C, files map[string][]byte) packd.Finder {
	box := packd.NewMemoryBox()
	for name, data := range files {
		c.Assert(box.AddBytes(name, data), qt.IsNil)
	}
	return box
}

func TestLoadShaderCode(t *testing.T) {
	c := qt.New(t)

	box := shaderBox(c, map[string][]byte{VertexShaderFile: spirv})
	code, err := LoadShaderCode(box, VertexShaderFile)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.DeepEquals, spirv)
}

func TestLoadShaderCodeCompressed(t *testing.T) {
	c := qt.New(t)

	large := bytes.Repeat(spirv, 64)
	packed := compress(c, large)
	c.Assert(bytes.HasPrefix(packed, lz4Magic), qt.IsTrue)

	box := shaderBox(c, map[string][]byte{FragmentShaderFile: packed})
	code, err := LoadShaderCode(box, FragmentShaderFile)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.DeepEquals, large)
}

func TestLoadShaderCodeErrors(t *testing.T) {
	c := qt.New(t)

	box := shaderBox(c, map[string][]byte{
		"odd.spv":   spirv[:6],
		"empty.spv": {},
	})

	tests := []struct {
		name string
		file string
		want string
	}{
		{"missing", "missing.spv", "failed to open missing.spv: .*"},
		{"odd size", "odd.spv", "odd.spv: size 6 is not a multiple of 4"},
		{"empty", "empty.spv", "empty.spv is empty"},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			code, err := LoadShaderCode(box, test.file)
			c.Assert(code, qt.IsNil)
			c.Assert(err, qt.ErrorMatches, test.want)
			c.Assert(errors.Is(err, core.ErrShaderLoad), qt.IsTrue)
		})
	}
}

func TestLoadShaderPair(t *testing.T) {
	c := qt.New(t)

	_, err := loadShaderPair(shaderBox(c, map[string][]byte{VertexShaderFile: spirv}))
	c.Assert(err, qt.ErrorMatches, "failed to open frag.spv: .*")

	pair, err := loadShaderPair(shaderBox(c, map[string][]byte{
		VertexShaderFile:   spirv,
		FragmentShaderFile: compress(c, spirv),
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(pair.vertex, qt.DeepEquals, spirv)
	c.Assert(pair.fragment, qt.DeepEquals, spirv)
}

func TestShaderStageInfo(t *testing.T) {
	c := qt.New(t)

	vertex := Shader{Name: VertexShaderFile, Type: core.VertexShaderType}.stageInfo()
	c.Assert(vertex.Stage, qt.Equals, vk.ShaderStageVertexBit)
	c.Assert(vertex.PName, qt.Equals, "main\x00")

	fragment := Shader{Name: FragmentShaderFile, Type: core.FragmentShaderType}.stageInfo()
	c.Assert(fragment.Stage, qt.Equals, vk.ShaderStageFragmentBit)
}

func TestOpenShaderSourceArchive(t *testing.T) {
	c := qt.New(t)

	builder := kar.NewBuilder(kar.Header{Author: "carbon", Version: 1})
	c.Assert(builder.Add(VertexShaderFile, bytes.NewReader(spirv)), qt.IsNil)
	c.Assert(builder.Add(FragmentShaderFile, bytes.NewReader(spirv)), qt.IsNil)
	var buf bytes.Buffer
	_, err := builder.WriteTo(&buf)
	c.Assert(err, qt.IsNil)

	path := filepath.Join(c.TempDir(), "shaders.kar")
	c.Assert(os.WriteFile(path, buf.Bytes(), 0o644), qt.IsNil)

	source, release, err := OpenShaderSource(path)
	c.Assert(err, qt.IsNil)
	defer release()

	pair, err := loadShaderPair(source)
	c.Assert(err, qt.IsNil)
	c.Assert(pair.vertex, qt.DeepEquals, spirv)
	c.Assert(pair.fragment, qt.DeepEquals, spirv)
}

func TestOpenShaderSourceBadArchive(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), "shaders.kar")
	c.Assert(os.WriteFile(path, spirv, 0o644), qt.IsNil)

	_, _, err := OpenShaderSource(path)
	c.Assert(errors.Is(err, core.ErrShaderLoad), qt.IsTrue)
	c.Assert(errors.Is(err, kar.ErrFileFormat), qt.IsTrue)
}
