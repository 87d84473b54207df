package mainwindow

import (
	"context"
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/domain"
	"ingredient-scanner/internal/matcher"
	"ingredient-scanner/internal/wordlist"
)

func TestFindingSegments(t *testing.T) {
	segs := findingSegments(&app.ScanResult{
		Text:    "lard and whey",
		Matches: matcher.Result{Suspicious: []string{"whey"}, Prohibited: []string{"lard"}},
	})
	require.Len(t, segs, 2)
	first := segs[0].(*widget.TextSegment)
	assert.Equal(t, "Prohibited: lard", first.Text)
	assert.Equal(t, theme.ColorNameError, first.Style.ColorName)
	assert.Equal(t, "Suspicious: whey", segs[1].(*widget.TextSegment).Text)

	segs = findingSegments(&app.ScanResult{Text: "water"})
	require.Len(t, segs, 1)
	assert.Equal(t, app.NoMatchesMessage, segs[0].(*widget.TextSegment).Text)
}

func TestListEditorAddRemove(t *testing.T) {
	a := test.NewApp()
	w := a.NewWindow("test")
	lists := wordlist.NewLists(wordlist.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, lists.Load(context.Background()))

	le := newListEditor(lists, wordlist.Suspicious, w)
	n := len(le.items)

	le.entry.SetText("  Beetle Dye ")
	le.add()
	assert.Len(t, le.items, n+1)
	assert.Equal(t, "beetle dye", le.items[n])
	assert.Empty(t, le.entry.Text)

	le.remove(n)
	assert.Len(t, le.items, n)
}

func TestNewWindowStartsDisabled(t *testing.T) {
	a := test.NewApp()
	s := app.NewSession(app.Options{Logger: zerolog.Nop()})
	mw := New(a, s)
	assert.True(t, mw.scanBtn.Disabled())
	assert.True(t, mw.clearBtn.Disabled())
}

func TestShowErrorHidesRecognizerDetails(t *testing.T) {
	a := test.NewApp()
	s := app.NewSession(app.Options{Logger: zerolog.Nop()})
	mw := New(a, s)

	mw.showError(domain.RecognitionFailure("text recognition failed", errors.New("tesseract: no eng.traineddata")))
	assert.Equal(t, "Error: "+app.RecognitionNotice, mw.statusBar.Text)
}
