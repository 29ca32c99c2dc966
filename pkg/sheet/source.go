package sheet

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/contactsheet/pkg/errors"
)

// Source is the raw, still encoded bytes of one input image.
// A slot owns its source exclusively: [Sheet.Add] stores a private copy of
// Data, and nothing in this package mutates it afterwards.
type Source struct {
	ID   uuid.UUID
	Name string
	Data []byte
}

// NewSource creates a source with a fresh ID. The data is not copied here;
// the copy happens when the source is added to a sheet.
func NewSource(name string, data []byte) Source {
	return Source{ID: uuid.New(), Name: name, Data: data}
}

// ReadSource reads an image file into a source named after the file.
func ReadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Source{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", path)
	}
	if err != nil {
		return Source{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image %s", path)
	}
	return NewSource(filepath.Base(path), data), nil
}

// ReadSources reads every path in order, failing on the first error.
func ReadSources(paths []string) ([]Source, error) {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		src, err := ReadSource(p)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// Size returns the encoded size in bytes.
func (s Source) Size() int { return len(s.Data) }

func (s Source) clone() Source {
	data := make([]byte, len(s.Data))
	copy(data, s.Data)
	id := s.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return Source{ID: id, Name: s.Name, Data: data}
}

func (s Source) validate(i int) error {
	if len(s.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "image %d (%s) is empty", i, s.Name)
	}
	return errors.ValidateSourceName(s.Name)
}
