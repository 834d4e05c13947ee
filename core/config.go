package core

import "time"

// Configuration defines a global engine configuration setting
type Configuration struct {
	// Environment is the GO_ENV name the configuration was loaded for
	Environment string

	Time     TimeConfiguration     `envPrefix:"TIME_"`
	Renderer RendererConfiguration `envPrefix:"RENDERER_"`
	Assets   AssetsConfiguration   `envPrefix:"ASSETS_"`
	Server   ServerConfiguration   `envPrefix:"SERVER_"`
	Log      LogConfiguration      `envPrefix:"LOG_"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `env:"FPS" envDefault:"60"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  uint32 `env:"WIDTH" envDefault:"1280"`
	ScreenHeight uint32 `env:"HEIGHT" envDefault:"720"`

	// ParticleCount is the number of points drawn by the particle pass
	ParticleCount int `env:"PARTICLES" envDefault:"100"`

	// MaxTextureSize bounds the longest side of an uploaded image,
	// larger images are scaled down before upload
	MaxTextureSize int `env:"MAX_TEXTURE_SIZE" envDefault:"4096"`

	// ShaderDirectory is looked up in the asset source
	ShaderDirectory string `env:"SHADER_DIR" envDefault:"shaders"`

	// ImageDirectory is looked up in the asset source
	ImageDirectory string `env:"IMAGE_DIR" envDefault:"images"`

	// Extensions are probed at setup, a missing one is only reported
	Extensions []string `env:"EXTENSIONS" envSeparator:"," envDefault:"OES_standard_derivatives,ANGLE_instanced_arrays"`
}

// AssetsConfiguration selects where shaders, images and templates come from.
// An empty configuration means the assets embedded into the binary.
type AssetsConfiguration struct {
	Directory string `env:"DIR"`
	Archive   string `env:"ARCHIVE"`
	BaseURL   string `env:"BASE_URL"`

	// LoadTimeout resolves a pending texture join with an error,
	// zero waits forever
	LoadTimeout time.Duration `env:"LOAD_TIMEOUT" envDefault:"0s"`
}

// ServerConfiguration is used to configure the site server
type ServerConfiguration struct {
	Address         string        `env:"ADDR" envDefault:"0.0.0.0:4040"`
	Template        string        `env:"TEMPLATE" envDefault:"templates/index.html"`
	Catalog         string        `env:"CATALOG" envDefault:"pages.yaml"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LogConfiguration is used to configure logging output
type LogConfiguration struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}
