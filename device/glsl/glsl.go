// Package glsl rewrites the GLSL ES 1.00 shaders shipped for the browser into
// GLSL 3.30 core, the dialect desktop OpenGL contexts accept.
package glsl

import (
	"regexp"
	"strings"

	"github.com/ndev/portfolio/core"
)

// Version is the directive heading every translated source
const Version = "#version 330 core"

// FragmentOutput replaces gl_FragColor in fragment stages
const FragmentOutput = "fragColor"

var (
	attribute = regexp.MustCompile(`\battribute\b`)
	varying   = regexp.MustCompile(`\bvarying\b`)
	fragColor = regexp.MustCompile(`\bgl_FragColor\b`)
	texture2D = regexp.MustCompile(`\btexture2D\s*\(`)
)

// ToCore translates an ES 1.00 shader of the given stage. Lines carrying
// #version, #extension or precision statements are dropped, the extensions
// used by the site are part of core 3.3.
func ToCore(src string, stage core.ShaderType) string {
	var b strings.Builder
	b.WriteString(Version)
	b.WriteByte('\n')
	if stage == core.FragmentShaderType {
		b.WriteString("out vec4 " + FragmentOutput + ";\n")
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#version") ||
			strings.HasPrefix(trimmed, "#extension") ||
			strings.HasPrefix(trimmed, "precision ") {
			continue
		}

		switch stage {
		case core.VertexShaderType:
			line = attribute.ReplaceAllString(line, "in")
			line = varying.ReplaceAllString(line, "out")
		case core.FragmentShaderType:
			line = varying.ReplaceAllString(line, "in")
			line = fragColor.ReplaceAllString(line, FragmentOutput)
		}
		line = texture2D.ReplaceAllString(line, "texture(")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
