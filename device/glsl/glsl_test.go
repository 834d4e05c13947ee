package glsl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/device/glsl"
)

const vertexES = `precision mediump float;
attribute vec3 aPosition;
attribute vec2 aTex;
varying vec2 vUv;
void main() {
    vUv = aTex;
    gl_Position = vec4(aPosition, 1.0);
}
`

const fragmentES = `#extension GL_OES_standard_derivatives : enable
precision mediump float;
uniform sampler2D uSampler;
varying vec2 vUv;
void main() {
    gl_FragColor = texture2D(uSampler, vUv);
}
`

func TestVertexStage(t *testing.T) {
	out := glsl.ToCore(vertexES, core.VertexShaderType)

	if !strings.HasPrefix(out, glsl.Version+"\n") {
		t.Errorf("missing version header:\n%s", out)
	}
	for _, want := range []string{"in vec3 aPosition;", "in vec2 aTex;", "out vec2 vUv;"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	for _, gone := range []string{"attribute", "varying", "precision"} {
		if strings.Contains(out, gone) {
			t.Errorf("%q left in:\n%s", gone, out)
		}
	}
}

func TestFragmentStage(t *testing.T) {
	out := glsl.ToCore(fragmentES, core.FragmentShaderType)

	for _, want := range []string{
		"out vec4 " + glsl.FragmentOutput + ";",
		"in vec2 vUv;",
		glsl.FragmentOutput + " = texture(uSampler, vUv);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	for _, gone := range []string{"#extension", "gl_FragColor", "texture2D"} {
		if strings.Contains(out, gone) {
			t.Errorf("%q left in:\n%s", gone, out)
		}
	}
}

func TestIdentifiersContainingKeywordsSurvive(t *testing.T) {
	src := "uniform float varyingScale;\nvoid main() { gl_FragColor = vec4(varyingScale); }\n"
	out := glsl.ToCore(src, core.FragmentShaderType)
	if !strings.Contains(out, "varyingScale") {
		t.Errorf("identifier rewritten:\n%s", out)
	}
}

func TestShippedShadersTranslate(t *testing.T) {
	dir := filepath.Join("..", "..", "assets", "static", "shaders")
	stages := map[string]core.ShaderType{
		"vertex.glsl":            core.VertexShaderType,
		"fragment.glsl":          core.FragmentShaderType,
		"vertexParticles.glsl":   core.VertexShaderType,
		"fragmentParticles.glsl": core.FragmentShaderType,
	}
	for name, stage := range stages {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		out := glsl.ToCore(string(data), stage)
		if strings.Count(out, "#version") != 1 {
			t.Errorf("%s: expected a single version directive", name)
		}
		if strings.Contains(out, "gl_FragColor") || strings.Contains(out, "attribute ") {
			t.Errorf("%s: untranslated ES keywords left", name)
		}
	}
}
