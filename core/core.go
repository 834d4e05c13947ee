// Package core holds the pieces every host of the portfolio engine shares:
// configuration, the frame time service, the main-thread task queue and
// cooperative cancellation.
package core

// Releasable defines anything holding device or OS resources that can be freed.
type Releasable interface {

	// Release frees the held resources. Calling it more than once is allowed.
	Release()
}

// ShaderType represents the stage a shader source is compiled for
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}
