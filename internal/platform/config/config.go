// Package config loads the engine and server configuration. Defaults match
// the reference hourglass (400x600 canvas, 30 ms tick, 120 particle cap);
// every value can be overridden through SANDWATCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sandwatch-io/sandwatch/internal/geometry"
)

// Config holds every tunable consumed at construction time.
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64
	GlassMargin  float64
	NeckWidth    float64
	NeckHeight   float64

	FallStreamWidth float64
	ParticleRadius  float64
	MaxParticles    int

	TickInterval    time.Duration
	DurationSeconds int

	// RandSeed seeds the particle generator; 0 means entropy.
	RandSeed int64

	HTTPAddr string
	DBPath   string
}

// Load builds the configuration from defaults plus environment overrides,
// then validates it.
func Load() (*Config, error) {
	c := &Config{
		CanvasWidth:     getEnvAsFloat("SANDWATCH_CANVAS_WIDTH", 400),
		CanvasHeight:    getEnvAsFloat("SANDWATCH_CANVAS_HEIGHT", 600),
		GlassMargin:     getEnvAsFloat("SANDWATCH_GLASS_MARGIN", 60),
		NeckWidth:       getEnvAsFloat("SANDWATCH_NECK_WIDTH", 20),
		NeckHeight:      getEnvAsFloat("SANDWATCH_NECK_HEIGHT", 20),
		FallStreamWidth: getEnvAsFloat("SANDWATCH_STREAM_WIDTH", 4),
		ParticleRadius:  getEnvAsFloat("SANDWATCH_PARTICLE_RADIUS", 2),
		MaxParticles:    getEnvAsInt("SANDWATCH_MAX_PARTICLES", 120),
		TickInterval:    time.Duration(getEnvAsInt("SANDWATCH_TICK_MS", 30)) * time.Millisecond,
		DurationSeconds: getEnvAsInt("SANDWATCH_DURATION_S", 5),
		RandSeed:        int64(getEnvAsInt("SANDWATCH_RAND_SEED", 0)),
		HTTPAddr:        getEnv("SANDWATCH_HTTP_ADDR", ":8080"),
		DBPath:          getEnv("SANDWATCH_DB_PATH", "sandwatch.db"),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects configurations the engine cannot run with. Geometry
// constraints are checked by constructing the glass shape itself.
func (c *Config) Validate() error {
	if c.DurationSeconds < 1 {
		return fmt.Errorf("%w: duration %d s, must be >= 1", geometry.ErrInvalidConfiguration, c.DurationSeconds)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", geometry.ErrInvalidConfiguration)
	}
	if c.MaxParticles <= 0 {
		return fmt.Errorf("%w: particle cap must be positive", geometry.ErrInvalidConfiguration)
	}
	if c.ParticleRadius <= 0 || c.FallStreamWidth <= 0 {
		return fmt.Errorf("%w: particle radius and stream width must be positive", geometry.ErrInvalidConfiguration)
	}
	_, err := geometry.NewGlassShape(c.CanvasWidth, c.CanvasHeight, c.GlassMargin, c.NeckWidth, c.NeckHeight)
	return err
}

// Shape constructs the glass shape described by this configuration.
// Validate must have passed.
func (c *Config) Shape() (*geometry.GlassShape, error) {
	return geometry.NewGlassShape(c.CanvasWidth, c.CanvasHeight, c.GlassMargin, c.NeckWidth, c.NeckHeight)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
