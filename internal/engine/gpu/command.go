package gpu

import "github.com/Faultbox/custom-rp/pkg/math"

// RenderTargetID names a render target. The empty id is the camera target.
type RenderTargetID string

// CameraTarget is the render target bound by SetupCameraProperties.
const CameraTarget RenderTargetID = ""

// FilterMode is the sampling filter of a texture.
type FilterMode int

const (
	FilterPoint FilterMode = iota
	FilterBilinear
)

// TextureFormat is the storage format of a render texture.
type TextureFormat int

const (
	FormatColor TextureFormat = iota
	FormatDepth
	// FormatShadowmap is a depth format that supports compare sampling.
	FormatShadowmap
)

// RenderTextureDescriptor describes a temporary render target.
type RenderTextureDescriptor struct {
	Width     int
	Height    int
	DepthBits int
	Filter    FilterMode
	Format    TextureFormat
}

// LoadAction controls what happens to target contents when it is bound.
type LoadAction int

const (
	LoadLoad LoadAction = iota
	LoadClear
	LoadDontCare
)

// StoreAction controls whether rendered contents are kept.
type StoreAction int

const (
	StoreStore StoreAction = iota
	StoreDontCare
)

// DepthBias is the rasterizer depth offset.
type DepthBias struct {
	Constant   float32
	SlopeScale float32
}

// IsZero reports whether the bias leaves depth untouched.
func (b DepthBias) IsZero() bool {
	return b.Constant == 0 && b.SlopeScale == 0
}

// CommandKind identifies a recorded command.
type CommandKind int

const (
	CmdBeginSample CommandKind = iota
	CmdEndSample
	CmdGetTemporaryRT
	CmdReleaseTemporaryRT
	CmdSetRenderTarget
	CmdClearRenderTarget
	CmdSetViewProjection
	CmdSetDepthBias
)

var commandNames = [...]string{
	CmdBeginSample:        "BeginSample",
	CmdEndSample:          "EndSample",
	CmdGetTemporaryRT:     "GetTemporaryRT",
	CmdReleaseTemporaryRT: "ReleaseTemporaryRT",
	CmdSetRenderTarget:    "SetRenderTarget",
	CmdClearRenderTarget:  "ClearRenderTarget",
	CmdSetViewProjection:  "SetViewProjection",
	CmdSetDepthBias:       "SetDepthBias",
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return "Unknown"
}

// Command is one recorded command. Only the fields relevant to Kind are set.
type Command struct {
	Kind CommandKind

	Name       string // sample name
	Target     RenderTargetID
	Descriptor RenderTextureDescriptor
	Load       LoadAction
	Store      StoreAction

	ClearDepth bool
	ClearColor bool
	Color      math.Color

	View       math.Mat4
	Projection math.Mat4

	Bias DepthBias
}

// CommandBuffer records commands for later execution by a Context.
// It is not safe for concurrent use.
type CommandBuffer struct {
	Name     string
	commands []Command
}

// NewCommandBuffer creates an empty, named command buffer.
func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{Name: name}
}

// Commands returns the recorded commands. The slice is only valid until
// the next Clear.
func (b *CommandBuffer) Commands() []Command {
	return b.commands
}

// Len returns the number of recorded commands.
func (b *CommandBuffer) Len() int {
	return len(b.commands)
}

// Clear drops all recorded commands, keeping capacity.
func (b *CommandBuffer) Clear() {
	b.commands = b.commands[:0]
}

// BeginSample opens a named profiling scope.
func (b *CommandBuffer) BeginSample(name string) {
	b.commands = append(b.commands, Command{Kind: CmdBeginSample, Name: name})
}

// EndSample closes the profiling scope opened with the same name.
func (b *CommandBuffer) EndSample(name string) {
	b.commands = append(b.commands, Command{Kind: CmdEndSample, Name: name})
}

// GetTemporaryRT acquires a frame-scoped render target.
func (b *CommandBuffer) GetTemporaryRT(id RenderTargetID, desc RenderTextureDescriptor) {
	b.commands = append(b.commands, Command{Kind: CmdGetTemporaryRT, Target: id, Descriptor: desc})
}

// ReleaseTemporaryRT releases a target acquired with GetTemporaryRT.
// Releasing an unknown id is a no-op.
func (b *CommandBuffer) ReleaseTemporaryRT(id RenderTargetID) {
	b.commands = append(b.commands, Command{Kind: CmdReleaseTemporaryRT, Target: id})
}

// SetRenderTarget binds id for subsequent draws.
func (b *CommandBuffer) SetRenderTarget(id RenderTargetID, load LoadAction, store StoreAction) {
	b.commands = append(b.commands, Command{Kind: CmdSetRenderTarget, Target: id, Load: load, Store: store})
}

// ClearRenderTarget clears the bound target.
func (b *CommandBuffer) ClearRenderTarget(clearDepth, clearColor bool, color math.Color) {
	b.commands = append(b.commands, Command{
		Kind:       CmdClearRenderTarget,
		ClearDepth: clearDepth,
		ClearColor: clearColor,
		Color:      color,
	})
}

// SetViewProjectionMatrices sets the transform used by subsequent draws.
func (b *CommandBuffer) SetViewProjectionMatrices(view, proj math.Mat4) {
	b.commands = append(b.commands, Command{Kind: CmdSetViewProjection, View: view, Projection: proj})
}

// SetGlobalDepthBias sets the rasterizer depth bias for subsequent draws.
func (b *CommandBuffer) SetGlobalDepthBias(constant, slopeScale float32) {
	b.commands = append(b.commands, Command{
		Kind: CmdSetDepthBias,
		Bias: DepthBias{Constant: constant, SlopeScale: slopeScale},
	})
}
