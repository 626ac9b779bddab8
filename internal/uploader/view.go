package uploader

import (
	"io"
	"os"
	"path/filepath"
)

// SelectedFile is a document chosen by the user. Open is called once per
// submission and the content is never cached.
type SelectedFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Picker reports the current selection of the file input.
type Picker interface {
	Selected() (SelectedFile, bool)
}

// StatusSink displays the current phase of an upload.
type StatusSink interface {
	SetStatus(text string)
}

// ResultsPanel is hidden until a successful upload reveals it. SetOutput
// replaces the previous output.
type ResultsPanel interface {
	Show()
	SetOutput(text string)
}

// View holds the three UI regions the controller writes to. It is resolved
// once when the controller is built.
type View struct {
	Picker  Picker
	Status  StatusSink
	Results ResultsPanel
}

// PathPicker selects a file on the local filesystem. An empty Path means no
// selection.
type PathPicker struct {
	Path string
}

// Selected implements Picker.
func (p PathPicker) Selected() (SelectedFile, bool) {
	if p.Path == "" {
		return SelectedFile{}, false
	}
	path := p.Path
	return SelectedFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, true
}
