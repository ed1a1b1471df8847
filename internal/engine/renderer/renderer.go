// Package renderer draws field meshes with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marchfield/internal/engine/shader"
	"github.com/Faultbox/marchfield/internal/logger"
	"github.com/Faultbox/marchfield/pkg/mesh"
)

// floatsPerVertex is position (x, y, z) followed by colour (r, g, b).
const floatsPerVertex = 6

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	Fill   mgl32.Vec3 // Added to every vertex colour
	Clear  mgl32.Vec3
}

// DefaultConfig returns a white-on-dark configuration.
func DefaultConfig(width, height int) Config {
	return Config{
		Width:  width,
		Height: height,
		Fill:   mgl32.Vec3{0.9, 0.9, 0.85},
		Clear:  mgl32.Vec3{0.1, 0.1, 0.15},
	}
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program

	vao, vbo, ebo uint32
	indexCount    int32

	lineVAO, lineVBO uint32
	lineCount        int32

	halfExtent float32
}

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uProjection;

out vec3 vertexColor;

void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vertexColor = aColor;
}
`

const fragmentShaderSource = `
#version 410 core

in vec3 vertexColor;
uniform vec3 uFill;
out vec4 FragColor;

void main() {
	FragColor = vec4(clamp(uFill + vertexColor, 0.0, 1.0), 1.0);
}
`

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		halfExtent: 1,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(cfg.Clear.X(), cfg.Clear.Y(), cfg.Clear.Z(), 1.0)

	var err error
	r.program, err = shader.Compile(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	// Colour attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	logger.Debug("mesh buffers created",
		zap.Uint32("program", r.program.ID),
		zap.Uint32("vao", r.vao),
		zap.Uint32("vbo", r.vbo),
		zap.Uint32("ebo", r.ebo),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Interleave packs a mesh into the renderer's vertex layout.
func Interleave(m mesh.Mesh) []float32 {
	out := make([]float32, 0, len(m.Vertices)*floatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Colour[0], v.Colour[1], v.Colour[2],
		)
	}
	return out
}

// UploadMesh replaces the drawn geometry.
func (r *Renderer) UploadMesh(m mesh.Mesh) {
	r.indexCount = int32(len(m.Indices))

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)

	if r.indexCount == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		vertices := Interleave(m)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*2, gl.Ptr(m.Indices), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	logger.Debug("mesh uploaded",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
	)
}

// UploadLines replaces the overlay lines, given as interleaved endpoint
// pairs. Nil clears the overlay.
func (r *Renderer) UploadLines(vertices []float32) {
	r.lineCount = int32(len(vertices) / floatsPerVertex)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	if r.lineCount == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)
}

// Projection maps [-halfExtent, halfExtent] on the shorter window axis to
// the viewport, with y pointing down to match the field.
func Projection(halfExtent float32, width, height int) mgl32.Mat4 {
	hx, hy := halfExtent, halfExtent
	if width > 0 && height > 0 {
		aspect := float32(width) / float32(height)
		if aspect >= 1 {
			hx *= aspect
		} else {
			hy /= aspect
		}
	}
	return mgl32.Ortho(-hx, hx, hy, -hy, -1, 1)
}

// SetView sets how many chunk units are visible from the centre to the
// nearest window edge.
func (r *Renderer) SetView(halfExtent float32) {
	if halfExtent > 0 {
		r.halfExtent = halfExtent
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw renders the uploaded mesh, then the overlay lines on top.
func (r *Renderer) Draw() {
	if r.indexCount == 0 && r.lineCount == 0 {
		return
	}
	r.program.Use()
	r.program.SetMat4("uProjection", Projection(r.halfExtent, r.config.Width, r.config.Height))

	if r.indexCount > 0 {
		r.program.SetVec3("uFill", r.config.Fill)
		gl.BindVertexArray(r.vao)
		gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_SHORT, gl.PtrOffset(0))
	}
	if r.lineCount > 0 {
		r.program.SetVec3("uFill", mgl32.Vec3{})
		gl.BindVertexArray(r.lineVAO)
		gl.DrawArrays(gl.LINES, 0, r.lineCount)
	}
	gl.BindVertexArray(0)
}

// End finishes the current frame.
func (r *Renderer) End() {}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
