package mainwindow

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ingredient-scanner/internal/wordlist"
)

// listEditor edits one category of the word lists.
type listEditor struct {
	lists    *wordlist.Lists
	category wordlist.Category
	parent   fyne.Window

	items []string
	list  *widget.List
	entry *widget.Entry
}

func newListEditor(lists *wordlist.Lists, c wordlist.Category, parent fyne.Window) *listEditor {
	le := &listEditor{lists: lists, category: c, parent: parent, items: lists.Get(c)}

	le.list = widget.NewList(
		func() int { return len(le.items) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
				widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(le.items[id])
			row.Objects[1].(*widget.Button).OnTapped = func() { le.remove(id) }
		},
	)

	le.entry = widget.NewEntry()
	le.entry.SetPlaceHolder(fmt.Sprintf("Add %s ingredient", c))
	le.entry.OnSubmitted = func(string) { le.add() }
	return le
}

func (le *listEditor) content() fyne.CanvasObject {
	addBtn := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), le.add)
	return container.NewBorder(nil, container.NewBorder(nil, nil, nil, addBtn, le.entry), nil, nil, le.list)
}

func (le *listEditor) reload() {
	le.items = le.lists.Get(le.category)
	le.list.Refresh()
}

func (le *listEditor) add() {
	if wordlist.NormalizePhrase(le.entry.Text) == "" {
		return
	}
	if _, err := le.lists.Add(context.Background(), le.category, le.entry.Text); err != nil {
		dialog.ShowError(err, le.parent)
	}
	le.entry.SetText("")
	le.reload()
}

func (le *listEditor) remove(index int) {
	if _, err := le.lists.RemoveAt(context.Background(), le.category, index); err != nil {
		dialog.ShowError(err, le.parent)
	}
	le.reload()
}

// showListsDialog opens the word list editor.
func showListsDialog(lists *wordlist.Lists, parent fyne.Window) {
	editors := make([]*listEditor, 0, 2)
	tabs := container.NewAppTabs()
	for _, c := range wordlist.Categories() {
		le := newListEditor(lists, c, parent)
		editors = append(editors, le)
		tabs.Append(container.NewTabItem(titleOf(c), le.content()))
	}

	resetBtn := widget.NewButton("Reset to Defaults", func() {
		dialog.ShowConfirm("Reset Word Lists",
			"Replace both lists with the built-in defaults?\nYour additions and removals will be lost.",
			func(ok bool) {
				if !ok {
					return
				}
				if err := lists.ResetDefaults(context.Background()); err != nil {
					dialog.ShowError(err, parent)
				}
				for _, le := range editors {
					le.reload()
				}
			}, parent)
	})
	resetBtn.Importance = widget.DangerImportance

	d := dialog.NewCustom("Word Lists", "Close", container.NewBorder(nil, resetBtn, nil, nil, tabs), parent)
	d.Resize(fyne.NewSize(420, 520))
	d.Show()
}

func titleOf(c wordlist.Category) string {
	if c == wordlist.Prohibited {
		return "Prohibited"
	}
	return "Suspicious"
}
