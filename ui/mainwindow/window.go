// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/image"
	"ingredient-scanner/internal/version"
	"ingredient-scanner/pkg/geometry"
	"ingredient-scanner/ui/cropview"
)

const prefKeyLastDir = "lastDirectory"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session

	view      *cropview.View
	preview   *fynecanvas.Image
	modeLabel *widget.Label
	findings  *widget.RichText
	rawText   *widget.Entry
	statusBar *widget.Label

	scanBtn, rescanBtn, resetBtn, clearBtn *widget.Button
}

// New creates a new main window.
func New(fyneApp fyne.App, session *app.Session) *MainWindow {
	win := fyneApp.NewWindow("Ingredient Scanner")

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.updateButtons(false)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.view = cropview.NewView(mw.session.Editor())
	mw.view.OnCanvasSize(func(s geometry.Size) { mw.session.SetCanvasSize(s) })

	mw.preview = fynecanvas.NewImageFromImage(nil)
	mw.preview.FillMode = fynecanvas.ImageFillContain
	mw.preview.SetMinSize(fyne.NewSize(200, 120))

	mw.modeLabel = widget.NewLabel("")
	mw.findings = widget.NewRichText()
	mw.findings.Wrapping = fyne.TextWrapWord
	mw.rawText = widget.NewMultiLineEntry()
	mw.rawText.Wrapping = fyne.TextWrapWord
	mw.rawText.Disable()
	mw.statusBar = widget.NewLabel("Open an image of an ingredient list to begin")

	results := container.NewBorder(
		container.NewVBox(mw.modeLabel, mw.findings, widget.NewSeparator()),
		mw.preview,
		nil,
		nil,
		container.NewScroll(mw.rawText),
	)

	split := container.NewHSplit(mw.view, results)
	split.SetOffset(0.6)

	content := container.NewBorder(
		mw.createToolbar(),
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the scan action buttons.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	openBtn := widget.NewButton("Open Image", mw.onOpenImage)
	mw.scanBtn = widget.NewButton("Scan Crop", mw.onScan)
	mw.scanBtn.Importance = widget.HighImportance
	mw.rescanBtn = widget.NewButton("Rescan", mw.onRescan)
	mw.resetBtn = widget.NewButton("Reset Crop", mw.session.ResetCrop)
	mw.clearBtn = widget.NewButton("Clear", mw.session.Clear)
	listsBtn := widget.NewButton("Word Lists", mw.onEditLists)

	return container.NewHBox(openBtn, mw.scanBtn, mw.rescanBtn, mw.resetBtn, mw.clearBtn, listsBtn)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Clear", mw.session.Clear),
	)
	scanMenu := fyne.NewMenu("Scan",
		fyne.NewMenuItem("Scan Crop", mw.onScan),
		fyne.NewMenuItem("Rescan With Next Mode", mw.onRescan),
		fyne.NewMenuItem("Reset Crop", mw.session.ResetCrop),
	)
	listsMenu := fyne.NewMenu("Lists",
		fyne.NewMenuItem("Edit Word Lists...", mw.onEditLists),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, scanMenu, listsMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventImageLoaded, func(data interface{}) {
		snap, ok := data.(*image.Snapshot)
		if !ok {
			return
		}
		mw.view.SetImage(snap.Image)
		mw.showResult(nil)
		title := "Ingredient Scanner"
		if snap.Path != "" {
			title += " - " + filepath.Base(snap.Path)
		}
		mw.SetTitle(title)
		mw.updateStatus(fmt.Sprintf("Loaded %dx%d image. Drag to select the ingredient list.", snap.Width(), snap.Height()))
		mw.updateButtons(false)
	})

	mw.session.On(app.EventCropReset, func(interface{}) {
		mw.showResult(nil)
		mw.updateStatus("Crop reset")
	})

	mw.session.On(app.EventCleared, func(interface{}) {
		mw.view.SetImage(nil)
		mw.showResult(nil)
		mw.SetTitle("Ingredient Scanner")
		mw.updateStatus("Cleared")
		mw.updateButtons(false)
	})

	mw.session.On(app.EventScanStarted, func(data interface{}) {
		if m, ok := data.(image.Mode); ok {
			mw.updateStatus("Scanning with " + m.String() + "...")
		}
		mw.updateButtons(true)
	})

	mw.session.On(app.EventScanFinished, func(data interface{}) {
		mw.updateButtons(false)
	})

	mw.session.On(app.EventScanCompleted, func(data interface{}) {
		if res, ok := data.(*app.ScanResult); ok {
			mw.showResult(res)
			mw.updateStatus(fmt.Sprintf("Scan complete (%s, %s)", res.ModeName, res.Duration.Round(1e6)))
		}
	})
}

// updateButtons enables the actions that make sense for the current state.
func (mw *MainWindow) updateButtons(scanning bool) {
	hasImage := mw.session.Original() != nil
	setEnabled(mw.scanBtn, hasImage && !scanning)
	setEnabled(mw.rescanBtn, hasImage && !scanning)
	setEnabled(mw.resetBtn, hasImage && !scanning)
	setEnabled(mw.clearBtn, hasImage && !scanning)
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// showResult renders a result, or clears the results pane when res is nil.
func (mw *MainWindow) showResult(res *app.ScanResult) {
	if res == nil {
		mw.modeLabel.SetText("")
		mw.findings.Segments = nil
		mw.findings.Refresh()
		mw.rawText.SetText("")
		mw.preview.Image = nil
		mw.preview.Refresh()
		return
	}

	mw.modeLabel.SetText("Mode: " + res.ModeName)
	mw.findings.Segments = findingSegments(res)
	mw.findings.Refresh()
	mw.rawText.SetText(res.Text)
	mw.preview.Image = res.Processed
	mw.preview.Refresh()
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(err error) {
	if errors.Is(err, app.ErrStale) {
		return
	}
	msg := app.UserMessage(err)
	mw.updateStatus("Error: " + msg)
	dialog.ShowError(errors.New(msg), mw.Window)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		if path := reader.URI().Path(); path != "" {
			mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(path))
		}
		if err := mw.LoadImage(reader); err != nil {
			mw.showError(err)
		}
	}, mw.Window)

	fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// LoadImage decodes the image behind reader into the session.
func (mw *MainWindow) LoadImage(reader fyne.URIReadCloser) error {
	snap, err := image.Decode(reader)
	if err != nil {
		return err
	}
	snap.Path = reader.URI().Path()
	mw.session.SetImage(snap)
	return nil
}

// LoadImageFile loads an image from disk, e.g. one named on the command line.
func (mw *MainWindow) LoadImageFile(path string) error {
	return mw.session.LoadImageFile(path)
}

func (mw *MainWindow) onScan() {
	go func() {
		if _, err := mw.session.ScanSelection(context.Background()); err != nil {
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onRescan() {
	go func() {
		if _, err := mw.session.Rescan(context.Background()); err != nil {
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onEditLists() {
	showListsDialog(mw.session.Lists(), mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Ingredient Scanner",
		fmt.Sprintf("Ingredient Scanner v%s\n\n"+
			"Photograph an ingredient list, crop it and check it\n"+
			"against your suspicious and prohibited word lists.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
