package opengl

import (
	"fmt"
	"log/slog"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/renderer"
	"scene-engine/scene"
)

// gpuGeometry holds the buffer objects of an uploaded scene.Geometry.
type gpuGeometry struct {
	vao, vbo, ebo uint32
	vertexCount   int32
	hasIndices    bool
}

// Drawer draws sub-meshes, sprites and particles for a renderer.Manager.
type Drawer struct {
	// Ambient is added to every lit surface.
	Ambient core.Color

	logger  *slog.Logger
	program uint32

	mvpLoc        int32
	modelLoc      int32
	lightDirLoc   int32
	lightColorLoc int32
	ambientLoc    int32
	albedoLoc     int32
	emissiveLoc   int32
	unlitLoc      int32
	alphaTestLoc  int32
	hasTextureLoc int32

	billboards *billboardRenderer
	geometries map[*scene.Geometry]*gpuGeometry
	textures   []*scene.Texture
}

var _ renderer.Drawer = (*Drawer)(nil)

// NewDrawer compiles the shaders. The GL context must be current.
func NewDrawer(logger *slog.Logger) (*Drawer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	prog, err := newProgram(meshVertSrc, meshFragSrc)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	bb, err := newBillboardRenderer()
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, err
	}

	d := &Drawer{
		Ambient: core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		logger:  logger,
		program: prog,

		mvpLoc:        uniform(prog, "mvp"),
		modelLoc:      uniform(prog, "model"),
		lightDirLoc:   uniform(prog, "lightDir"),
		lightColorLoc: uniform(prog, "lightColor"),
		ambientLoc:    uniform(prog, "ambientColor"),
		albedoLoc:     uniform(prog, "matAlbedo"),
		emissiveLoc:   uniform(prog, "matEmissive"),
		unlitLoc:      uniform(prog, "unlit"),
		alphaTestLoc:  uniform(prog, "alphaTest"),
		hasTextureLoc: uniform(prog, "hasTexture"),

		billboards: bb,
		geometries: make(map[*scene.Geometry]*gpuGeometry),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "albedoTex"), 0)
	return d, nil
}

func (d *Drawer) DrawSubMesh(sm *scene.SubMesh, ctx *scene.FrameContext) {
	mesh := sm.Mesh()
	if ctx.Camera == nil || mesh.Geometry == nil {
		return
	}
	gpu := d.ensureUploaded(mesh.Geometry)
	if gpu == nil {
		return
	}

	model := mesh.GetWorldMatrix()
	mvp := model.Mul(ctx.Camera.GetViewProjectionMatrix())

	gl.UseProgram(d.program)
	gl.UniformMatrix4fv(d.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(d.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))
	d.applyLights(ctx.Scene)
	blended := d.applyMaterial(sm.Material(), mesh.Visibility)

	if ctx.Scene.ForceWireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	primitive := uint32(gl.TRIANGLES)
	switch mesh.Geometry.DrawMode {
	case scene.DrawLines:
		primitive = gl.LINES
	case scene.DrawPoints:
		primitive = gl.POINTS
	}

	gl.BindVertexArray(gpu.vao)
	if gpu.hasIndices {
		gl.DrawElements(primitive, int32(sm.IndexCount), gl.UNSIGNED_INT, gl.PtrOffset(sm.IndexStart*4))
	} else {
		gl.DrawArrays(primitive, int32(sm.VerticesStart), int32(sm.VerticesCount))
	}
	gl.BindVertexArray(0)

	if ctx.Scene.ForceWireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	if blended {
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}
}

// applyLights uses the first enabled directional light.
func (d *Drawer) applyLights(s *scene.Scene) {
	dir := math.Vec3{Y: -1}
	var color core.Color
	for _, l := range s.Lights() {
		if l.Enabled && l.Type == scene.LightTypeDirectional {
			dir = l.Direction.Normalize()
			color = core.Color{R: l.Color.R * l.Intensity, G: l.Color.G * l.Intensity, B: l.Color.B * l.Intensity}
			break
		}
	}
	gl.Uniform3f(d.lightDirLoc, dir.X, dir.Y, dir.Z)
	gl.Uniform3f(d.lightColorLoc, color.R, color.G, color.B)
	gl.Uniform3f(d.ambientLoc, d.Ambient.R, d.Ambient.G, d.Ambient.B)
}

// applyMaterial sets the material uniforms and reports whether blending was
// enabled for the draw.
func (d *Drawer) applyMaterial(mat scene.Material, visibility float32) bool {
	albedo := core.ColorWhite
	var emissive core.Color
	unlit, alphaTest, cull, textured := false, false, true, false

	if m, ok := mat.(*scene.StandardMaterial); ok {
		albedo = m.Albedo
		albedo.A = m.Alpha
		emissive = m.EmissiveColor
		unlit = m.Unlit
		alphaTest = m.AlphaTest
		cull = m.BackFaceCull
		textured = d.bindTexture(m.AlbedoTexture)
		if !textured && m.ReflectionTexture != nil {
			if fb, ok := m.ReflectionTexture.Framebuffer.(*Framebuffer); ok {
				gl.ActiveTexture(gl.TEXTURE0)
				gl.BindTexture(gl.TEXTURE_2D, fb.ColorTex)
				textured = true
			}
		}
	}
	albedo.A *= visibility

	gl.Uniform4f(d.albedoLoc, albedo.R, albedo.G, albedo.B, albedo.A)
	gl.Uniform3f(d.emissiveLoc, emissive.R, emissive.G, emissive.B)
	gl.Uniform1i(d.unlitLoc, boolToInt32(unlit))
	gl.Uniform1i(d.alphaTestLoc, boolToInt32(alphaTest))
	gl.Uniform1i(d.hasTextureLoc, boolToInt32(textured))

	if cull {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	if albedo.A >= 1 {
		return false
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	return true
}

func (d *Drawer) DrawSprites(sm *scene.SpriteManager, ctx *scene.FrameContext) {
	if ctx.Camera == nil {
		return
	}
	var cols int
	if sm.Texture != nil && sm.CellSize > 0 {
		cols = sm.Texture.Width / sm.CellSize
	}
	quads := make([]billboard, 0, len(sm.Sprites))
	for _, sp := range sm.Sprites {
		if !sp.IsVisible {
			continue
		}
		q := billboard{
			position: sp.Position,
			halfW:    sp.Width / 2,
			halfH:    sp.Height / 2,
			angle:    sp.Angle,
			color:    sp.Color,
			uv:       [4]float32{0, 0, 1, 1},
		}
		if cols > 0 {
			q.uv = cellUV(sp.CellIndex, cols, sm.CellSize, sm.Texture.Width, sm.Texture.Height)
		}
		quads = append(quads, q)
	}
	textured := d.bindTexture(sm.Texture)
	d.billboards.draw(quads, ctx.Camera, textured, scene.BlendAlpha)
}

func (d *Drawer) DrawParticles(ps *scene.ParticleSystem, ctx *scene.FrameContext) {
	if ctx.Camera == nil || len(ps.Particles) == 0 {
		return
	}
	quads := make([]billboard, len(ps.Particles))
	for i, p := range ps.Particles {
		quads[i] = billboard{
			position: p.Position,
			halfW:    p.Size,
			halfH:    p.Size,
			color:    p.Color,
			uv:       [4]float32{0, 0, 1, 1},
		}
	}
	d.billboards.draw(quads, ctx.Camera, false, ps.BlendMode)
}

func (d *Drawer) ClearDepthStencil() {
	gl.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
}

func (d *Drawer) ensureUploaded(g *scene.Geometry) *gpuGeometry {
	if gpu, ok := d.geometries[g]; ok {
		return gpu
	}
	if len(g.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &gpuGeometry{
		vertexCount: int32(len(g.Vertices)),
		hasIndices:  len(g.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.vao)
	gl.GenBuffers(1, &gpu.vbo)
	gl.BindVertexArray(gpu.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Vertices)*int(stride), gl.Ptr(g.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Color))))

	if gpu.hasIndices {
		gl.GenBuffers(1, &gpu.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	d.geometries[g] = gpu
	g.GPUData = gpu
	return gpu
}

// ReleaseGeometry frees the buffers of g, e.g. when its mesh is disposed.
func (d *Drawer) ReleaseGeometry(g *scene.Geometry) {
	gpu, ok := d.geometries[g]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.vao)
	gl.DeleteBuffers(1, &gpu.vbo)
	if gpu.ebo != 0 {
		gl.DeleteBuffers(1, &gpu.ebo)
	}
	delete(d.geometries, g)
	g.GPUData = nil
}

func (d *Drawer) Destroy() {
	for g := range d.geometries {
		d.ReleaseGeometry(g)
	}
	for _, tex := range d.textures {
		deleteTexture(tex)
	}
	d.textures = nil
	d.billboards.destroy()
	gl.DeleteProgram(d.program)
}

// cellUV returns the atlas rectangle (u0, v0, u1, v1) of cell index.
func cellUV(index, cols, cellSize, texW, texH int) [4]float32 {
	x := (index % cols) * cellSize
	y := (index / cols) * cellSize
	u0 := float32(x) / float32(texW)
	v0 := float32(y) / float32(texH)
	return [4]float32{u0, v0, u0 + float32(cellSize)/float32(texW), v0 + float32(cellSize)/float32(texH)}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
