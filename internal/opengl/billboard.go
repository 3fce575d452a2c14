package opengl

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-engine/core"
	"scene-engine/math"
	"scene-engine/scene"
)

// billboard is one camera-facing quad in world space.
type billboard struct {
	position     math.Vec3
	halfW, halfH float32
	angle        float32
	color        core.Color
	uv           [4]float32 // u0, v0, u1, v1
}

// billboardRenderer streams quads built on the CPU through one dynamic VBO.
type billboardRenderer struct {
	prog          uint32
	vao           uint32
	vbo           uint32
	vpLoc         int32
	hasTextureLoc int32
	vboCap        int // vertices
	buf           []float32
}

const (
	billboardVerts  = 6
	billboardFloats = 9 // pos(3) + uv(2) + color(4)
)

func newBillboardRenderer() (*billboardRenderer, error) {
	prog, err := newProgram(billboardVertSrc, billboardFragSrc)
	if err != nil {
		return nil, fmt.Errorf("billboard shader: %w", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	const stride = int32(billboardFloats * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(12))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(20))
	gl.BindVertexArray(0)

	br := &billboardRenderer{
		prog:          prog,
		vao:           vao,
		vbo:           vbo,
		vpLoc:         uniform(prog, "vp"),
		hasTextureLoc: uniform(prog, "hasTexture"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(uniform(prog, "billboardTex"), 0)
	return br, nil
}

// draw renders quads facing cam. Depth is tested but not written.
func (br *billboardRenderer) draw(quads []billboard, cam *scene.Camera, textured bool, mode scene.BlendMode) {
	if len(quads) == 0 {
		return
	}
	view := cam.GetViewMatrix()
	// camera axes are the first two columns of the view matrix
	camRight := math.Vec3{X: view[0][0], Y: view[1][0], Z: view[2][0]}
	camUp := math.Vec3{X: view[0][1], Y: view[1][1], Z: view[2][1]}

	n := len(quads) * billboardVerts
	br.buf = br.buf[:0]
	add := func(p math.Vec3, u, v float32, c core.Color) {
		br.buf = append(br.buf, p.X, p.Y, p.Z, u, v, c.R, c.G, c.B, c.A)
	}
	for _, q := range quads {
		right, up := camRight.Mul(q.halfW), camUp.Mul(q.halfH)
		if q.angle != 0 {
			sin, cos := math32.Sin(q.angle), math32.Cos(q.angle)
			right, up = right.Mul(cos).Add(up.Mul(sin)), up.Mul(cos).Sub(right.Mul(sin))
		}
		bl := q.position.Sub(right).Sub(up)
		brc := q.position.Add(right).Sub(up) // bottom right
		tl := q.position.Sub(right).Add(up)
		tr := q.position.Add(right).Add(up)
		u0, v0, u1, v1 := q.uv[0], q.uv[1], q.uv[2], q.uv[3]

		add(tl, u0, v1, q.color)
		add(tr, u1, v1, q.color)
		add(brc, u1, v0, q.color)
		add(tl, u0, v1, q.color)
		add(brc, u1, v0, q.color)
		add(bl, u0, v0, q.color)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, br.vbo)
	if n > br.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(br.buf)*4, gl.Ptr(br.buf), gl.DYNAMIC_DRAW)
		br.vboCap = n
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(br.buf)*4, gl.Ptr(br.buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Enable(gl.BLEND)
	if mode == scene.BlendAdditive {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)

	vp := cam.GetViewProjectionMatrix()
	gl.UseProgram(br.prog)
	gl.UniformMatrix4fv(br.vpLoc, 1, false, (*float32)(unsafe.Pointer(&vp[0][0])))
	gl.Uniform1i(br.hasTextureLoc, boolToInt32(textured))

	gl.BindVertexArray(br.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(n))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (br *billboardRenderer) destroy() {
	gl.DeleteVertexArrays(1, &br.vao)
	gl.DeleteBuffers(1, &br.vbo)
	gl.DeleteProgram(br.prog)
}
