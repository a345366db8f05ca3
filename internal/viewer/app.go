package viewer

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"go.uber.org/zap"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/circuitnet/internal/config"
	"github.com/OpenTraceLab/circuitnet/internal/watch"
	"github.com/OpenTraceLab/circuitnet/pkg/catalog"
	"github.com/OpenTraceLab/circuitnet/pkg/diagram"
	"github.com/OpenTraceLab/circuitnet/pkg/export"
	"github.com/OpenTraceLab/circuitnet/pkg/render"
)

const (
	// hitTolerance is the pick distance in screen pixels.
	hitTolerance = 6.0
	// clickSlop is how far the pointer may move before a press becomes a pan.
	clickSlop = 4.0

	sidePanelWidth = 300
)

// Options configures the viewer.
type Options struct {
	Config         *config.Config
	Logger         *zap.Logger
	DiagramPath    string   // Loaded at startup when set
	ComponentFiles []string // Descriptor files (.json, .yaml, .net)
	Watch          bool     // Reload the diagram when it changes on disk
}

// App is the circuit viewer window.
type App struct {
	window   *app.Window
	theme    *material.Theme
	gvTheme  *theme.Theme
	explorer *explorer.Explorer
	log      *zap.Logger
	opts     Options

	session    *Session
	camera     *render.Camera
	colorTheme render.Theme
	colors     *render.Colors

	// Work posted from other goroutines, run on the UI goroutine.
	posted chan func()

	watcher  *watch.Watcher
	watchCtx context.Context
	cancel   context.CancelFunc

	// UI widgets
	openBtn    widget.Clickable
	fitBtn     widget.Clickable
	themeBtn   widget.Clickable
	clearBtn   widget.Clickable
	exportBtn  widget.Clickable
	exportMenu *menu.DropdownMenu
	search     widget.Editor
	results    widget.List

	openIcon   *widget.Icon
	fitIcon    *widget.Icon
	themeIcon  *widget.Icon
	clearIcon  *widget.Icon
	exportIcon *widget.Icon

	// Mouse interaction
	pressed  bool
	moved    bool
	pressPos f32.Point
	lastPos  f32.Point
	hover    *diagram.Shape

	status string
}

// New creates the viewer for a window.
func New(w *app.Window, opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := opts.Config

	nlCfg := cfg.NetlistConfig()
	if err := nlCfg.Validate(); err != nil {
		return nil, err
	}
	colorTheme, err := render.ParseTheme(cfg.Viewer.Theme)
	if err != nil {
		return nil, err
	}

	repo := catalog.NewMemoryRepository()
	if err := repo.LoadFiles(opts.ComponentFiles...); err != nil {
		return nil, err
	}

	a := &App{
		window:     w,
		theme:      material.NewTheme(),
		gvTheme:    theme.NewTheme("", nil, true),
		explorer:   explorer.NewExplorer(w),
		log:        opts.Logger,
		opts:       opts,
		session:    NewSession(nlCfg, cfg.Palette(), repo, opts.Logger),
		camera:     render.NewCamera(1200, 800),
		colorTheme: colorTheme,
		colors:     render.GetColors(colorTheme),
		posted:     make(chan func(), 16),
	}
	a.theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	a.search.SingleLine = true
	a.search.Submit = true
	a.results.Axis = layout.Vertical
	a.watchCtx, a.cancel = context.WithCancel(context.Background())

	makeIcon := func(data []byte, name string) *widget.Icon {
		icon, err := widget.NewIcon(data)
		if err != nil {
			a.log.Warn("failed to load icon", zap.String("icon", name), zap.Error(err))
			return nil
		}
		return icon
	}
	a.openIcon = makeIcon(icons.FileFolderOpen, "open")
	a.fitIcon = makeIcon(icons.NavigationFullscreen, "fit")
	a.themeIcon = makeIcon(icons.ImageBrightness6, "theme")
	a.clearIcon = makeIcon(icons.ContentClear, "clear")
	a.exportIcon = makeIcon(icons.FileFileDownload, "export")
	a.exportMenu = a.buildExportMenu()

	a.log.Info("viewer started",
		zap.Int("components", repo.Len()),
		zap.String("theme", colorTheme.String()),
	)
	return a, nil
}

// Run processes window events until the window is closed.
func (a *App) Run() error {
	defer a.shutdown()

	if a.opts.DiagramPath != "" {
		a.loadDiagram(a.opts.DiagramPath)
	}

	var ops op.Ops
	for {
		ev := a.window.Event()
		a.explorer.ListenEvents(ev)

		switch e := ev.(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			a.drainPosted()

			gtx := app.NewContext(&ops, e)
			a.handleKeys(gtx)
			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) shutdown() {
	a.cancel()
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

// post schedules fn on the UI goroutine and wakes the window.
func (a *App) post(fn func()) {
	select {
	case a.posted <- fn:
	default:
		a.log.Warn("ui queue full, dropping update")
	}
	a.window.Invalidate()
}

func (a *App) drainPosted() {
	for {
		select {
		case fn := <-a.posted:
			fn()
		default:
			return
		}
	}
}

func (a *App) loadDiagram(path string) {
	if err := a.session.Load(path); err != nil {
		a.log.Error("failed to load diagram", zap.String("path", path), zap.Error(err))
		a.status = err.Error()
		return
	}
	a.hover = nil
	a.status = ""
	a.window.Option(app.Title("Circuit Viewer - " + filepath.Base(path)))
	a.fitToView()
	a.watchDiagram(path)
}

func (a *App) reloadDiagram(path string) {
	if path != a.session.Path {
		return
	}
	if err := a.session.Load(path); err != nil {
		// Keep showing the last good diagram while the file is mid-save.
		a.log.Warn("reload failed", zap.String("path", path), zap.Error(err))
		a.status = "reload failed: " + err.Error()
		return
	}
	a.hover = nil
	a.status = "reloaded"
}

func (a *App) watchDiagram(path string) {
	if !a.opts.Watch {
		return
	}
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	w, err := watch.New(func(changed string) {
		a.post(func() { a.reloadDiagram(path) })
	}, a.log, path)
	if err != nil {
		a.log.Warn("file watch unavailable", zap.String("path", path), zap.Error(err))
		return
	}
	w.Start(a.watchCtx)
	a.watcher = w
}

func (a *App) openFilePicker() {
	go func() {
		file, err := a.explorer.ChooseFile("svg")
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.log.Error("file picker failed", zap.Error(err))
			}
			return
		}
		defer file.Close()

		if f, ok := file.(*os.File); ok {
			path := f.Name()
			a.post(func() { a.loadDiagram(path) })
			return
		}

		// Some platforms only hand out a stream; such diagrams cannot be
		// watched.
		d, err := diagram.Parse(file)
		a.post(func() {
			if err != nil {
				a.log.Error("failed to parse diagram", zap.Error(err))
				a.status = err.Error()
				return
			}
			a.session.SetDiagram("", d)
			a.fitToView()
		})
	}()
}

func (a *App) exportView(f export.Format, scale int) {
	data, err := a.session.Export(f, scale)
	if err != nil {
		a.log.Error("export failed", zap.Error(err))
		a.status = err.Error()
		return
	}

	name := exportName(a.session.Path, f, scale)
	go func() {
		w, err := a.explorer.CreateFile(name)
		if err != nil {
			if err != explorer.ErrUserDecline {
				a.log.Error("save dialog failed", zap.Error(err))
			}
			return
		}
		_, err = w.Write(data)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		a.post(func() {
			if err != nil {
				a.log.Error("export write failed", zap.String("file", name), zap.Error(err))
				a.status = err.Error()
				return
			}
			a.log.Info("view exported",
				zap.String("file", name),
				zap.String("format", f.String()),
				zap.Int("scale", scale),
				zap.Int("bytes", len(data)),
			)
			a.status = "exported " + name
		})
	}()
}

// exportName suggests a file name next to the diagram's own.
func exportName(path string, f export.Format, scale int) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if base == "" || base == "." {
		base = "circuit"
	}
	if f == export.FormatPNG {
		return fmt.Sprintf("%s-view@%dx%s", base, scale, f.Ext())
	}
	return base + "-view" + f.Ext()
}

func (a *App) buildExportMenu() *menu.DropdownMenu {
	type entry struct {
		label  string
		format export.Format
		scale  int
	}
	var entries []entry
	for _, s := range a.opts.Config.Export.Scales {
		entries = append(entries, entry{fmt.Sprintf("PNG %dx", s), export.FormatPNG, s})
	}
	entries = append(entries, entry{"SVG", export.FormatSVG, 1})

	opts := make([]menu.MenuOption, 0, len(entries))
	for _, e := range entries {
		e := e
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.exportView(e.format, e.scale)
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, e.label)
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(160)
	return drop
}

func (a *App) toggleTheme() {
	if a.colorTheme == render.ThemeLight {
		a.colorTheme = render.ThemeDark
	} else {
		a.colorTheme = render.ThemeLight
	}
	a.colors = render.GetColors(a.colorTheme)
	a.log.Debug("theme switched", zap.String("theme", a.colorTheme.String()))
	a.window.Invalidate()
}

func (a *App) fitToView() {
	d := a.session.Diagram()
	if d == nil {
		return
	}
	bbox := d.ViewBox
	if bbox.IsEmpty() {
		bbox = d.GetBoundingBox()
	}
	if bbox.IsEmpty() {
		a.log.Debug("diagram has no content to fit")
		return
	}
	a.camera.Fit(bbox)
	a.window.Invalidate()
}

func (a *App) clearOverlays() {
	a.session.ClearAll()
	a.search.SetText("")
	a.window.Invalidate()
}

func (a *App) handleKeys(gtx layout.Context) {
	if a.openBtn.Clicked(gtx) {
		a.openFilePicker()
	}
	if a.fitBtn.Clicked(gtx) {
		a.fitToView()
	}
	if a.themeBtn.Clicked(gtx) {
		a.toggleTheme()
	}
	if a.clearBtn.Clicked(gtx) {
		a.clearOverlays()
	}

	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "O", Required: key.ModShortcut},
			key.Filter{Name: "T", Required: key.ModShortcut},
			key.Filter{Name: "F", Required: key.ModShortcut},
			key.Filter{Name: key.NameEscape},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch ke.Name {
		case "O":
			a.openFilePicker()
		case "T":
			a.toggleTheme()
		case "F":
			a.fitToView()
		case key.NameEscape:
			a.clearOverlays()
		}
	}

	for {
		ev, ok := a.search.Update(gtx)
		if !ok {
			break
		}
		switch ev.(type) {
		case widget.ChangeEvent, widget.SubmitEvent:
			a.session.SetQuery(a.search.Text())
		}
	}
}

func (a *App) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  a,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Move | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons == pointer.ButtonPrimary {
				a.pressed = true
				a.moved = false
				a.pressPos = pe.Position
				a.lastPos = pe.Position
			}

		case pointer.Drag:
			if !a.pressed {
				continue
			}
			if !a.moved && dist(pe.Position, a.pressPos) > clickSlop {
				a.moved = true
			}
			if a.moved {
				a.camera.Pan(float64(pe.Position.X-a.lastPos.X), float64(pe.Position.Y-a.lastPos.Y))
				a.lastPos = pe.Position
				gtx.Execute(op.InvalidateCmd{})
			}

		case pointer.Release:
			if a.pressed && !a.moved {
				a.click(pe.Position, pe.Modifiers.Contain(key.ModShift))
				gtx.Execute(op.InvalidateCmd{})
			}
			a.pressed = false

		case pointer.Move:
			a.updateHover(pe.Position)

		case pointer.Scroll:
			factor := 1.0 - float64(pe.Scroll.Y)*0.01
			if factor < 0.5 {
				factor = 0.5
			}
			a.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
			gtx.Execute(op.InvalidateCmd{})
		}
	}
}

func (a *App) click(pos f32.Point, additive bool) {
	p := a.camera.ScreenToWorld(float64(pos.X), float64(pos.Y))
	switch a.session.Click(p, a.camera.Tolerance(hitTolerance), additive) {
	case ClickTraced:
		a.status = ""
	case ClickCleared:
		a.status = "highlight cleared"
	}
}

func (a *App) updateHover(pos f32.Point) {
	d := a.session.Diagram()
	if d == nil {
		return
	}
	p := a.camera.ScreenToWorld(float64(pos.X), float64(pos.Y))
	hit := d.ShapeAt(p, a.camera.Tolerance(hitTolerance))
	if hit != nil && hit.Background {
		hit = nil
	}
	if hit != a.hover {
		a.hover = hit
		a.window.Invalidate()
	}
}

func dist(p, q f32.Point) float32 {
	d := p.Sub(q)
	if d.X < 0 {
		d.X = -d.X
	}
	if d.Y < 0 {
		d.Y = -d.Y
	}
	return max(d.X, d.Y)
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	render.Fill(gtx, a.colors)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(a.layoutToolbar),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, a.layoutCanvas),
				layout.Rigid(a.layoutSidePanel),
			)
		}),
	)
}

func (a *App) iconButton(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, label string) layout.Dimensions {
	if icon == nil {
		return material.Button(a.theme, btn, label).Layout(gtx)
	}
	b := material.IconButton(a.theme, btn, icon, label)
	b.Size = unit.Dp(20)
	b.Inset = layout.UniformInset(unit.Dp(8))
	return b.Layout(gtx)
}

func (a *App) layoutToolbar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Top: 8, Bottom: 8, Left: 8, Right: 8}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return a.iconButton(gtx, &a.openBtn, a.openIcon, "Open (Ctrl+O)")
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return a.iconButton(gtx, &a.fitBtn, a.fitIcon, "Fit (Ctrl+F)")
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return a.iconButton(gtx, &a.themeBtn, a.themeIcon, "Theme (Ctrl+T)")
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return a.iconButton(gtx, &a.clearBtn, a.clearIcon, "Clear (Esc)")
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(a.layoutExportDropdown),
				)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(a.theme, a.statusLine())
				lbl.Color = a.colors.Text
				return lbl.Layout(gtx)
			}),
		)
	})
}

func (a *App) layoutExportDropdown(gtx layout.Context) layout.Dimensions {
	if a.exportBtn.Clicked(gtx) && a.session.Diagram() != nil {
		a.exportMenu.ToggleVisibility(gtx)
	}
	dims := a.iconButton(gtx, &a.exportBtn, a.exportIcon, "Export")

	// Layout menu after button so it appears on top
	a.exportMenu.Layout(gtx, a.gvTheme)
	return dims
}

func (a *App) statusLine() string {
	d := a.session.Diagram()
	if d == nil {
		return "No diagram loaded"
	}
	parts := []string{fmt.Sprintf("Shapes: %d", len(d.Shapes))}
	st := a.session.State()
	if n := len(st.Highlighted); n > 0 {
		parts = append(parts, fmt.Sprintf("Net: %d shapes, %d junctions", n, len(st.Terminals())))
	}
	if st.Searching() {
		parts = append(parts, fmt.Sprintf("Matches: %d", len(st.Matched)))
	}
	if a.hover != nil {
		if label, ok := a.session.Describe(a.hover.ID); ok {
			parts = append(parts, label)
		} else {
			parts = append(parts, a.hover.ID)
		}
	}
	parts = append(parts, fmt.Sprintf("Zoom: %.2fx", a.camera.Zoom))
	if a.status != "" {
		parts = append(parts, a.status)
	}
	return strings.Join(parts, " | ")
}

func (a *App) layoutCanvas(gtx layout.Context) layout.Dimensions {
	a.camera.UpdateScreenSize(gtx.Constraints.Max.X, gtx.Constraints.Max.Y)
	a.handlePointer(gtx)

	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, a)

	d := a.session.Diagram()
	if d == nil {
		return a.layoutWelcome(gtx)
	}

	render.RenderDiagram(gtx, a.camera, d, a.session.Styles(), a.colors)
	render.RenderHover(gtx, a.camera, a.hover, a.colors)
	render.RenderTerminals(gtx, a.camera, a.session.State().Terminals(), a.colors)

	return layout.Dimensions{Size: gtx.Constraints.Max}
}

func (a *App) layoutWelcome(gtx layout.Context) layout.Dimensions {
	body := func(txt string) layout.Widget {
		lbl := material.Body2(a.theme, txt)
		lbl.Color = a.colors.Text
		return lbl.Layout
	}
	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				title := material.H4(a.theme, "Circuit Viewer")
				title.Color = a.colors.Text
				return title.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: 16}.Layout),
			layout.Rigid(body("Click 'Open' or press Ctrl+O to select an SVG diagram")),
			layout.Rigid(layout.Spacer{Height: 8}.Layout),
			layout.Rigid(body("Or launch with: circuit-viewer <file.svg>")),
			layout.Rigid(layout.Spacer{Height: 16}.Layout),
			layout.Rigid(body("Click traces a net | Shift+click adds a net | Click background to clear | Drag to pan | Scroll to zoom")),
		)
	})
}

func (a *App) layoutSidePanel(gtx layout.Context) layout.Dimensions {
	width := gtx.Dp(unit.Dp(sidePanelWidth))
	gtx.Constraints.Min.X = width
	gtx.Constraints.Max.X = width

	paint.FillShape(gtx.Ops, a.colors.Panel, clip.Rect{Max: image.Pt(width, gtx.Constraints.Max.Y)}.Op())

	st := a.session.State()
	return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.H6(a.theme, "Components")
				lbl.Color = a.colors.Text
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: 8}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				ed := material.Editor(a.theme, &a.search, "Search designator, type, value...")
				ed.Color = a.colors.Text
				ed.TextSize = unit.Sp(14)
				return ed.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: 8}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(a.theme, fmt.Sprintf("%d of %d", len(st.Results), a.session.Components().Len()))
				lbl.Color = a.colors.Text
				return lbl.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: 4}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return material.List(a.theme, &a.results).Layout(gtx, len(st.Results), func(gtx layout.Context, i int) layout.Dimensions {
					return a.layoutResult(gtx, st.Results[i], st.Matched[st.Results[i].Designator])
				})
			}),
		)
	})
}

func (a *App) layoutResult(gtx layout.Context, c catalog.Descriptor, onDiagram bool) layout.Dimensions {
	return layout.Inset{Top: 4, Bottom: 4}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body1(a.theme, c.Label())
				lbl.Color = a.colors.Text
				if onDiagram {
					lbl.Color = render.Paint(a.opts.Config.Search.MatchStroke, a.colors.Text)
				}
				return lbl.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if c.Description == "" {
					return layout.Dimensions{}
				}
				lbl := material.Caption(a.theme, c.Description)
				lbl.Color = a.colors.Text
				return lbl.Layout(gtx)
			}),
		)
	})
}
