package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"scene-engine/scene"
)

// uploadTexture sends the pixels of tex to the GPU and records the texture
// name in tex.GLID. Textures still loading are skipped.
func uploadTexture(tex *scene.Texture) error {
	if !tex.IsReady() {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}
	if want := tex.Width * tex.Height * 4; len(tex.Pixels) < want {
		return fmt.Errorf("texture %q: %d bytes for %dx%d", tex.Name, len(tex.Pixels), tex.Width, tex.Height)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&tex.Pixels[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

func deleteTexture(tex *scene.Texture) {
	if tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

// bindTexture binds tex to unit 0, uploading it first. It reports false
// when nothing could be bound.
func (d *Drawer) bindTexture(tex *scene.Texture) bool {
	if tex == nil {
		return false
	}
	if tex.GLID == 0 {
		if !tex.IsReady() {
			return false
		}
		if err := uploadTexture(tex); err != nil {
			d.logger.Error("texture upload: " + err.Error())
			return false
		}
		d.textures = append(d.textures, tex)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	return true
}
