package gpu

import "github.com/Faultbox/custom-rp/pkg/math"

// ShaderTagID names a shader pass, e.g. "CustomLit".
type ShaderTagID string

// Shader passes the pipeline draws.
const (
	TagUnlit ShaderTagID = "SRPDefaultUnlit"
	TagLit   ShaderTagID = "CustomLit"
)

// ErrorMaterialName names the material unsupported renderers draw with.
const ErrorMaterialName = "Hidden/InternalErrorShader"

// SortingCriteria selects the draw order of a batch.
type SortingCriteria int

const (
	SortNone SortingCriteria = iota
	// SortCommonOpaque draws front to back.
	SortCommonOpaque
	// SortCommonTransparent draws back to front.
	SortCommonTransparent
)

func (c SortingCriteria) String() string {
	switch c {
	case SortCommonOpaque:
		return "opaque"
	case SortCommonTransparent:
		return "transparent"
	default:
		return "none"
	}
}

// SortingSettings configures batch ordering.
type SortingSettings struct {
	Criteria       SortingCriteria
	CameraPosition math.Vec3
}

// Material overrides the material of every renderer in a batch.
type Material struct {
	Name  string
	Color math.Color
}

// DrawingSettings configures one DrawRenderers batch.
type DrawingSettings struct {
	Sorting SortingSettings

	// PassTags lists the shader passes matched by this batch. A renderer
	// is drawn if its pass tag is any of them.
	PassTags []ShaderTagID

	EnableDynamicBatching bool
	EnableInstancing      bool

	OverrideMaterial *Material

	// Globals are the frame's lighting and shadow parameters.
	Globals *FrameGlobals
}

// NewDrawingSettings creates settings matching one pass.
func NewDrawingSettings(tag ShaderTagID, sorting SortingSettings) DrawingSettings {
	return DrawingSettings{
		Sorting:  sorting,
		PassTags: []ShaderTagID{tag},
	}
}

// SetShaderPassName sets the pass matched at index, growing the list.
func (d *DrawingSettings) SetShaderPassName(index int, tag ShaderTagID) {
	for len(d.PassTags) <= index {
		d.PassTags = append(d.PassTags, "")
	}
	d.PassTags[index] = tag
}

// Matches reports whether a renderer pass tag is drawn by these settings.
func (d *DrawingSettings) Matches(passTag string) bool {
	for _, t := range d.PassTags {
		if t != "" && string(t) == passTag {
			return true
		}
	}
	return false
}

// RenderQueueRange is an inclusive queue interval.
type RenderQueueRange struct {
	Lower int
	Upper int
}

var (
	QueueRangeOpaque      = RenderQueueRange{Lower: 0, Upper: 2500}
	QueueRangeTransparent = RenderQueueRange{Lower: 2501, Upper: 5000}
	QueueRangeAll         = RenderQueueRange{Lower: 0, Upper: 5000}
)

// Contains reports whether queue lies in the range.
func (r RenderQueueRange) Contains(queue int) bool {
	return queue >= r.Lower && queue <= r.Upper
}

// FilteringSettings selects which renderers a batch considers.
type FilteringSettings struct {
	QueueRange RenderQueueRange
}

// DefaultFiltering accepts every queue.
func DefaultFiltering() FilteringSettings {
	return FilteringSettings{QueueRange: QueueRangeAll}
}

// ShadowDrawingSettings configures one DrawShadows call.
type ShadowDrawingSettings struct {
	Results    CullingResults
	LightIndex int
	SplitData  ShadowSplitData
}
