package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer is the GPU side of a scene.RenderTargetTexture: an RGBA8 color
// texture with a depth-stencil renderbuffer.
type Framebuffer struct {
	FBO      uint32
	ColorTex uint32
	depthRB  uint32
	Width    int32
	Height   int32
}

func newFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer size %dx%d", width, height)
	}
	fb := &Framebuffer{Width: int32(width), Height: int32(height)}

	gl.GenTextures(1, &fb.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, fb.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.Width, fb.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.GenRenderbuffers(1, &fb.depthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, fb.Width, fb.Height)

	gl.GenFramebuffers(1, &fb.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, fb.depthRB)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return nil, fmt.Errorf("framebuffer incomplete: status=0x%X", status)
	}
	return fb, nil
}

// Destroy frees GPU resources.
func (fb *Framebuffer) Destroy() {
	if fb.FBO != 0 {
		gl.DeleteFramebuffers(1, &fb.FBO)
		fb.FBO = 0
	}
	if fb.depthRB != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRB)
		fb.depthRB = 0
	}
	if fb.ColorTex != 0 {
		gl.DeleteTextures(1, &fb.ColorTex)
		fb.ColorTex = 0
	}
}
