// Package shadow renders the cascaded shadow map of the primary directional
// light and publishes the parameters shading code needs to sample it.
package shadow

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/custom-rp/internal/engine/gpu"
	"github.com/Faultbox/custom-rp/internal/logger"
	"github.com/Faultbox/custom-rp/pkg/math"
)

// MapTarget is the temporary render target holding the shadow map.
const MapTarget gpu.RenderTargetID = gpu.PropDirectionalShadowMap

// PrimaryLightIndex is the only visible light that casts shadows.
const PrimaryLightIndex = 0

// ZeroRadiusFade is the fade coefficient of a cascade whose culling sphere
// has zero radius. Shading treats it as never inside the cascade.
const ZeroRadiusFade float32 = 1e20

const (
	bufferName      = "Shadows"
	shadowMapDepth  = 32
	shadowMapFormat = gpu.FormatShadowmap
)

// Outcome reports whether a shadow pass produced data.
type Outcome int

const (
	// Skipped means nothing was allocated and the globals were left alone.
	Skipped Outcome = iota
	// Committed means the shadow map was drawn and the globals replaced.
	Committed
)

func (o Outcome) String() string {
	if o == Committed {
		return "committed"
	}
	return "skipped"
}

// Shadows records the directional shadow pass. One instance serves one
// camera; it is not safe for concurrent use.
type Shadows struct {
	buf      *gpu.CommandBuffer
	acquired bool
	sampling bool
}

// New creates a shadow pass.
func New() *Shadows {
	return &Shadows{buf: gpu.NewCommandBuffer(bufferName)}
}

// Setup draws every cascade of the primary light into MapTarget and, on
// success, replaces globals.Shadows in one assignment.
//
// When no caster can reach the shadow range Setup returns Skipped without
// allocating. A cascade without casters keeps its sphere and matrix slot
// but is not drawn. Cleanup must be called once per frame either way.
func (s *Shadows) Setup(ctx gpu.Context, results gpu.CullingResults, settings Settings, globals *gpu.FrameGlobals) (outcome Outcome, err error) {
	settings = settings.Normalized()

	lights := results.VisibleLights()
	if len(lights) <= PrimaryLightIndex {
		logger.Debug("shadows skipped: no visible light")
		return Skipped, nil
	}
	light := lights[PrimaryLightIndex].Light
	if _, ok := results.ShadowCasterBounds(PrimaryLightIndex); !ok {
		logger.Debug("shadows skipped: no casters", zap.String("light", light.Name))
		return Skipped, nil
	}

	dir := settings.Directional
	size := dir.MapSize

	s.buf.GetTemporaryRT(MapTarget, gpu.RenderTextureDescriptor{
		Width:     size,
		Height:    size,
		DepthBits: shadowMapDepth,
		Filter:    gpu.FilterBilinear,
		Format:    shadowMapFormat,
	})
	s.acquired = true
	s.buf.SetRenderTarget(MapTarget, gpu.LoadDontCare, gpu.StoreStore)
	s.buf.ClearRenderTarget(true, false, math.Color{})
	s.buf.BeginSample(bufferName)
	if err := s.execute(ctx); err != nil {
		return Skipped, err
	}
	s.sampling = true
	defer func() {
		if err != nil {
			s.endSample(ctx)
		}
	}()

	out := gpu.ShadowGlobals{
		Valid:        true,
		Strength:     light.ShadowStrength,
		CascadeCount: dir.CascadeCount,
		DistanceFade: settings.DistanceFadeTerm(),
	}

	ratios := settings.Ratios()
	reversed := ctx.UsesReversedZ()
	scaleBias := math.ScaleBias()

	for i := 0; i < dir.CascadeCount; i++ {
		view, proj, split, ok := results.ComputeDirectionalShadowMatricesAndCullingPrimitives(
			PrimaryLightIndex, i, dir.CascadeCount, ratios, size, light.ShadowNearPlane)

		radius := split.CullingSphere[3]
		r2 := radius * radius
		out.CullingSpheres[i] = split.CullingSphere.XYZ().Vec4(r2)
		if r2 > 0 {
			out.FadeCoefficients[i] = 1 / r2
		} else {
			out.FadeCoefficients[i] = ZeroRadiusFade
		}

		sampling := proj
		if reversed {
			sampling = sampling.NegateRow(2)
		}
		out.Matrices[i] = scaleBias.Mul(sampling).Mul(view)

		if !ok {
			logger.Debug("cascade skipped: no casters", zap.Int("cascade", i))
			continue
		}

		s.buf.SetViewProjectionMatrices(view, proj)
		s.buf.SetGlobalDepthBias(settings.Bias.Constant, settings.Bias.SlopeScale)
		if err := s.execute(ctx); err != nil {
			return Skipped, err
		}
		err := ctx.DrawShadows(&gpu.ShadowDrawingSettings{
			Results:    results,
			LightIndex: PrimaryLightIndex,
			SplitData:  split,
		})
		s.buf.SetGlobalDepthBias(0, 0)
		if resetErr := s.execute(ctx); err == nil {
			err = resetErr
		}
		if err != nil {
			return Skipped, fmt.Errorf("draw cascade %d: %w", i, err)
		}
	}

	s.buf.EndSample(bufferName)
	if err := s.execute(ctx); err != nil {
		return Skipped, err
	}
	s.sampling = false

	globals.Shadows = out
	return Committed, nil
}

// Cleanup releases the shadow map acquired by Setup. It does nothing when
// no map is held, so it is safe to call more than once.
func (s *Shadows) Cleanup(ctx gpu.Context) error {
	if !s.acquired {
		logger.Debug("shadow cleanup: nothing acquired")
		return nil
	}
	s.acquired = false
	s.buf.ReleaseTemporaryRT(MapTarget)
	return s.execute(ctx)
}

// endSample closes the "Shadows" sample a failed Setup left open.
func (s *Shadows) endSample(ctx gpu.Context) {
	if !s.sampling {
		return
	}
	s.sampling = false
	s.buf.Clear()
	s.buf.EndSample(bufferName)
	if err := s.execute(ctx); err != nil {
		logger.Warn("shadow sample not closed", zap.Error(err))
	}
}

// Acquired reports whether the shadow map is currently held.
func (s *Shadows) Acquired() bool {
	return s.acquired
}

func (s *Shadows) execute(ctx gpu.Context) error {
	defer s.buf.Clear()
	if err := ctx.ExecuteCommandBuffer(s.buf); err != nil {
		return fmt.Errorf("shadows: %w", err)
	}
	return nil
}
