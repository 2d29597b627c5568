package app

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-gfx/internal/assets"
	"github.com/Faultbox/midgard-gfx/internal/engine/camera"
	"github.com/Faultbox/midgard-gfx/internal/engine/debug"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx"
	"github.com/Faultbox/midgard-gfx/internal/engine/gfx/loaders"
	"github.com/Faultbox/midgard-gfx/pkg/resource"
)

// Canvas is the size of the offscreen render target the scene is drawn to
// before the CRT pass scales it up.
const (
	CanvasWidth  = 320
	CanvasHeight = 200
)

// LogoPath is the asset shown as a sprite on the canvas.
const LogoPath = "textures/logo.png"

var (
	canvasClear  = mgl32.Vec4{0.05, 0.05, 0.15, 1}
	displayClear = mgl32.Vec4{0, 0, 0, 1}
	boxColor     = mgl32.Vec4{0.4, 1, 0.5, 1}
)

// scene owns the demo resources. Everything but the logo lives under
// label; the logo has its own label so it can be reloaded.
type scene struct {
	label     resource.Label
	logoLabel resource.Label
	cam       *camera.OrbitCamera

	canvas resource.Id
	box    resource.Id
	sprite resource.Id
	crt    resource.Id
	logo   resource.Id

	shapeParams  *gfx.UniformBlock
	spriteParams *gfx.UniformBlock
	crtParams    *gfx.UniformBlock
}

func newScene(g *gfx.Gfx, queue *assets.Queue) *scene {
	s := &scene{cam: camera.NewOrbitCamera()}
	boxMin, boxMax := mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}
	s.cam.FitToBounds(boxMin, boxMax)
	s.label = g.PushResourceLabel()
	defer g.PopResourceLabel()

	s.canvas = g.CreateTexture(gfx.TextureRenderTarget(CanvasWidth, CanvasHeight, gfx.RGBA8, gfx.D16), nil)

	depth := gfx.DefaultDepthStencilState()
	depth.DepthCmpFunc = gfx.CompareLessEqual
	depth.DepthWriteEnabled = true

	// Wireframe box.
	shapeLayout := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "mvp", Type: gfx.UniformMat4},
		gfx.UniformComponent{Name: "color", Type: gfx.UniformVec4},
	)
	var shapeProg gfx.ProgramBundleSetup
	shapeProg.Locator = resource.NewLocator("shape")
	shapeProg.AddProgram(0, shapeVS, shapeFS)
	shapeProg.AddUniformBlock("params", shapeLayout, gfx.VertexShader)
	boxMeshSetup, boxData := debug.WireBox(resource.NewLocator("box"), boxMin, boxMax)
	boxMesh := g.CreateMesh(boxMeshSetup, boxData)
	boxState := gfx.DrawStateFromMeshAndProg(boxMesh, g.CreateProgramBundle(shapeProg))
	boxState.DepthStencilState = depth
	s.box = g.CreateDrawState(boxState)
	s.shapeParams = gfx.NewUniformBlock(shapeLayout)

	// The quad is shared by the sprite and the CRT pass.
	quad := g.CreateMesh(gfx.FullScreenQuad(false), nil)

	spriteLayout := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "mvp", Type: gfx.UniformMat4},
		gfx.UniformComponent{Name: "tex", Type: gfx.UniformTexture},
	)
	var spriteProg gfx.ProgramBundleSetup
	spriteProg.Locator = resource.NewLocator("sprite")
	spriteProg.AddProgram(0, spriteVS, spriteFS)
	spriteProg.AddUniformBlock("params", spriteLayout, gfx.VertexShader)
	spriteState := gfx.DrawStateFromMeshAndProg(quad, g.CreateProgramBundle(spriteProg))
	spriteState.BlendState = gfx.AlphaBlendState()
	s.sprite = g.CreateDrawState(spriteState)
	s.spriteParams = gfx.NewUniformBlock(spriteLayout)

	crtLayout := gfx.NewUniformLayout(
		gfx.UniformComponent{Name: "canvas", Type: gfx.UniformTexture},
		gfx.UniformComponent{Name: "time", Type: gfx.UniformFloat},
		gfx.UniformComponent{Name: "resolution", Type: gfx.UniformVec2},
	)
	var crtProg gfx.ProgramBundleSetup
	crtProg.Locator = resource.NewLocator("crt")
	crtProg.AddProgram(0, crtVS, crtFS)
	crtProg.AddUniformBlock("params", crtLayout, gfx.FragmentShader)
	s.crt = g.CreateDrawState(gfx.DrawStateFromMeshAndProg(quad, g.CreateProgramBundle(crtProg)))
	s.crtParams = gfx.NewUniformBlock(crtLayout).
		SetTexture("canvas", s.canvas).
		SetVec2("resolution", mgl32.Vec2{CanvasWidth, CanvasHeight})

	s.loadLogo(g, queue)
	return s
}

// loadLogo (re)starts loading the logo texture under a fresh label.
func (s *scene) loadLogo(g *gfx.Gfx, queue *assets.Queue) {
	if s.logoLabel != resource.DefaultLabel {
		g.DestroyResources(s.logoLabel)
	}
	s.logoLabel = g.PushResourceLabel()
	s.logo = g.Load(loaders.NewTextureLoader(queue, gfx.TextureFromFile(resource.NewLocator(LogoPath)), nil))
	g.PopResourceLabel()
	s.spriteParams.SetTexture("tex", s.logo)
}

// draw renders one frame at time t seconds.
func (s *scene) draw(g *gfx.Gfx, t float32) {
	aspect := float32(CanvasWidth) / CanvasHeight
	proj := mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 100)
	view := s.cam.ViewMatrix()
	model := mgl32.HomogRotate3DY(t).Mul4(mgl32.HomogRotate3DX(t * 0.7))

	g.ApplyOffscreenRenderTarget(s.canvas)
	g.Clear(gfx.ClearAll, canvasClear, 1, 0)

	g.ApplyDrawState(s.box)
	s.shapeParams.SetMat4("mvp", proj.Mul4(view).Mul4(model)).SetVec4("color", boxColor)
	g.ApplyUniformBlock(0, s.shapeParams)
	g.Draw(0)

	if g.QueryResourceInfo(s.logo).State == resource.Valid {
		bob := float32(math.Sin(float64(t)*2)) * 0.1
		mvp := mgl32.Translate3D(-0.7, 0.6+bob, 0).Mul4(mgl32.Scale3D(0.25, 0.25*aspect, 1))
		g.ApplyDrawState(s.sprite)
		g.ApplyUniformBlock(0, s.spriteParams.SetMat4("mvp", mvp))
		g.Draw(0)
	}

	g.ApplyDefaultRenderTarget()
	g.Clear(gfx.ClearAll, displayClear, 1, 0)
	g.ApplyDrawState(s.crt)
	g.ApplyUniformBlock(0, s.crtParams.SetFloat("time", t))
	g.Draw(0)
}

func (s *scene) destroy(g *gfx.Gfx) {
	g.DestroyResources(s.label)
}
