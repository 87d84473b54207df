package mainwindow

import (
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/wordlist"
)

// findingSegments renders a result as rich text: prohibited phrases in the
// error color, suspicious ones in the warning color, or the empty message.
func findingSegments(res *app.ScanResult) []widget.RichTextSegment {
	findings, msg := app.Report(res)
	if msg != "" {
		return []widget.RichTextSegment{&widget.TextSegment{
			Text:  msg,
			Style: widget.RichTextStyleStrong,
		}}
	}

	segs := make([]widget.RichTextSegment, 0, len(findings))
	for _, f := range findings {
		style := widget.RichTextStyleInline
		label := "Suspicious: "
		style.ColorName = theme.ColorNameWarning
		if f.Category == wordlist.Prohibited {
			label = "Prohibited: "
			style.ColorName = theme.ColorNameError
		}
		style.Inline = false
		segs = append(segs, &widget.TextSegment{Text: label + f.Phrase, Style: style})
	}
	return segs
}
