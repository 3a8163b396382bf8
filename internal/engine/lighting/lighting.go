// Package lighting publishes the primary directional light to the frame
// globals and runs its shadow pass.
//
// Exactly one directional light is supported: the sun the scene designates.
// It is always visible light index 0.
package lighting

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/engine/scene"
	"github.com/Faultbox/custom-rp/internal/engine/shadow"
	"github.com/Faultbox/custom-rp/internal/logger"
)

const bufferName = "Lighting"

// Lighting sets up lights and shadows for one camera.
type Lighting struct {
	buf     *gpu.CommandBuffer
	shadows *shadow.Shadows
}

// New creates a lighting pass.
func New() *Lighting {
	return &Lighting{
		buf:     gpu.NewCommandBuffer(bufferName),
		shadows: shadow.New(),
	}
}

// Setup writes the sun's direction and color into globals and renders its
// shadows.
//
// Setup panics if sun is nil or not directional; the scene must designate
// exactly one directional light.
func (l *Lighting) Setup(ctx gpu.Context, results gpu.CullingResults, sun *scene.Light, settings shadow.Settings, globals *gpu.FrameGlobals) (shadow.Outcome, error) {
	if sun == nil {
		panic("lighting: scene has no sun; exactly one directional light is required")
	}
	if sun.Type != scene.LightDirectional {
		panic(fmt.Sprintf("lighting: sun %q is a %s light, want directional", sun.Name, sun.Type))
	}

	l.buf.BeginSample(bufferName)
	if err := l.execute(ctx); err != nil {
		return shadow.Skipped, err
	}

	globals.DirectionalLight = gpu.DirectionalLightGlobals{
		Direction: sun.Forward().Neg().Vec4(0),
		Color:     sun.Color.Linear().Scale(sun.Intensity).Vec4(),
	}

	outcome, err := l.shadows.Setup(ctx, results, settings, globals)
	if err != nil {
		l.buf.EndSample(bufferName)
		if endErr := l.execute(ctx); endErr != nil {
			logger.Warn("lighting sample not closed", zap.Error(endErr))
		}
		return outcome, err
	}

	l.buf.EndSample(bufferName)
	if err := l.execute(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Cleanup releases the frame's shadow resources.
func (l *Lighting) Cleanup(ctx gpu.Context) error {
	return l.shadows.Cleanup(ctx)
}

func (l *Lighting) execute(ctx gpu.Context) error {
	defer l.buf.Clear()
	if err := ctx.ExecuteCommandBuffer(l.buf); err != nil {
		return fmt.Errorf("lighting: %w", err)
	}
	return nil
}
