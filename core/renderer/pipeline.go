// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/gfx"
	"github.com/devblok/carbon/model"
)

// pipelineBundle holds everything the draw is recorded against
type pipelineBundle struct {
	renderPass          vk.RenderPass
	descriptorSetLayout vk.DescriptorSetLayout
	layout              vk.PipelineLayout
	pipeline            vk.Pipeline
}

func createRenderPass(dev vk.Device, format vk.Format, stack *gfx.ReleaseStack) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateRenderPass", vk.CreateRenderPass(dev, &rpci, nil, &renderPass)); err != nil {
		return nil, err
	}
	stack.Defer(func() {
		vk.DestroyRenderPass(dev, renderPass, nil)
	})
	return renderPass, nil
}

func createDescriptorSetLayout(dev vk.Device, stack *gfx.ReleaseStack) (vk.DescriptorSetLayout, error) {
	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		}},
	}

	var descriptorSetLayout vk.DescriptorSetLayout
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(dev, &dslci, nil, &descriptorSetLayout)); err != nil {
		return nil, err
	}
	stack.Defer(func() {
		vk.DestroyDescriptorSetLayout(dev, descriptorSetLayout, nil)
	})
	return descriptorSetLayout, nil
}

func createPipelineLayout(dev vk.Device, setLayout vk.DescriptorSetLayout, stack *gfx.ReleaseStack) (vk.PipelineLayout, error) {
	plci := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}

	var pipelineLayout vk.PipelineLayout
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreatePipelineLayout", vk.CreatePipelineLayout(dev, &plci, nil, &pipelineLayout)); err != nil {
		return nil, err
	}
	stack.Defer(func() {
		vk.DestroyPipelineLayout(dev, pipelineLayout, nil)
	})
	return pipelineLayout, nil
}

// blendAttachment blends the quad over the target by its alpha
func blendAttachment() vk.PipelineColorBlendAttachmentState {
	return vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
}

// viewportFor covers the whole extent, viewport and scissor are baked
// into the pipeline so it is rebuilt with the swap-chain.
func viewportFor(extent vk.Extent2D) (vk.Viewport, vk.Rect2D) {
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	return viewport, scissor
}

func createPipeline(dev vk.Device, shaders []Shader, extent vk.Extent2D, layout vk.PipelineLayout, renderPass vk.RenderPass, stack *gfx.ReleaseStack) (vk.Pipeline, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(shaders))
	for _, shader := range shaders {
		stages = append(stages, shader.stageInfo())
	}

	bindings := model.VertexBindingDescriptions()
	attributes := model.VertexAttributeDescriptions()
	viewport, scissor := viewportFor(extent)

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(bindings)),
			PVertexBindingDescriptions:      bindings,
			VertexAttributeDescriptionCount: uint32(len(attributes)),
			PVertexAttributeDescriptions:    attributes,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vk.False,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment()},
		},
		Layout:             layout,
		RenderPass:         renderPass,
		Subpass:            0,
		BasePipelineHandle: vk.Pipeline(vk.NullHandle),
		BasePipelineIndex:  -1,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := core.CheckResult(core.ErrResourceCreation, "vk.CreateGraphicsPipelines", vk.CreateGraphicsPipelines(dev, vk.PipelineCache(vk.NullHandle), uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return nil, err
	}
	pipeline := pipelines[0]
	stack.Defer(func() {
		vk.DestroyPipeline(dev, pipeline, nil)
	})
	return pipeline, nil
}

// createPipelineBundle builds the render pass and the pipeline bound to it
// for the current swap-chain format and extent.
func createPipelineBundle(dev vk.Device, shaders []Shader, format vk.Format, extent vk.Extent2D, stack *gfx.ReleaseStack) (pipelineBundle, error) {
	var (
		bundle pipelineBundle
		err    error
	)

	/* Render pass */
	if bundle.renderPass, err = createRenderPass(dev, format, stack); err != nil {
		return bundle, err
	}

	/* Pipeline Layout */
	if bundle.descriptorSetLayout, err = createDescriptorSetLayout(dev, stack); err != nil {
		return bundle, err
	}
	if bundle.layout, err = createPipelineLayout(dev, bundle.descriptorSetLayout, stack); err != nil {
		return bundle, err
	}

	/* Pipeline */
	if bundle.pipeline, err = createPipeline(dev, shaders, extent, bundle.layout, bundle.renderPass, stack); err != nil {
		return bundle, err
	}
	return bundle, nil
}
