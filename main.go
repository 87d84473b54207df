// Package main provides the entry point for the Ingredient Scanner desktop
// application.
package main

import (
	"context"
	"log"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/config"
	"ingredient-scanner/internal/logging"
	"ingredient-scanner/internal/ocr"
	"ingredient-scanner/internal/version"
	"ingredient-scanner/internal/wordlist"
	"ingredient-scanner/ui/mainwindow"
	"ingredient-scanner/ui/prefs"
)

const appID = "io.github.ingredientscanner"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Ingredient Scanner v%s", version.Version)

	cfg, err := config.Load(os.Getenv("SCANNER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "ingredient-scanner-gui"})

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.ScannerTheme{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The desktop app keeps its lists in the app preferences unless another
	// store is configured explicitly.
	var store wordlist.Store = prefs.NewStore(a.Preferences())
	if cfg.Store.Driver != config.DriverFile {
		s, closer, err := app.OpenStore(ctx, cfg.Store)
		if err != nil {
			log.Fatalf("Failed to open word list store: %v", err)
		}
		defer closer.Close()
		store = s
	}

	lists := wordlist.NewLists(store, logger)
	if err := lists.Load(ctx); err != nil {
		log.Printf("Word lists: %v", err)
	}

	opts := ocr.DefaultOptions()
	opts.Language = cfg.OCR.Language
	session := app.NewSession(app.Options{
		Lists:      lists,
		Engines:    ocr.NewTesseractFactory(opts),
		Logger:     logger,
		OCRTimeout: cfg.OCR.Timeout,
	})

	win := mainwindow.New(a, session)
	win.Resize(fyne.NewSize(1100, 750))

	if len(os.Args) > 1 {
		if err := win.LoadImageFile(os.Args[1]); err != nil {
			log.Printf("Failed to load image %s: %v", os.Args[1], err)
		}
	}

	win.ShowAndRun()
}
