package osprite

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/egtoney/osprite/utils"
)

// ErrStalePaste is returned when a paste resolves after the document moved on.
var ErrStalePaste = errors.New("stale paste")

// PasteTicket captures the history epoch at the time a paste was requested.
type PasteTicket struct {
	epoch uint64
}

// Copy returns a copy of the selection pixels, nil without a selection.
func (s *Session) Copy() *PixelSlice {
	if s.selection == nil {
		return nil
	}
	return s.selection.Data.Clone()
}

// Cut copies the selection and then deletes it.
func (s *Session) Cut() (*PixelSlice, error) {
	data := s.Copy()
	if data == nil {
		return nil, nil
	}
	if err := s.DeleteSelection(); err != nil {
		return nil, err
	}
	return data, nil
}

// BeginPaste must be called when a paste is requested, before the clipboard
// content is decoded. The ticket is handed back to ApplyPaste.
func (s *Session) BeginPaste() PasteTicket {
	return PasteTicket{epoch: s.history.Epoch()}
}

// ApplyPaste commits the live selection and floats data as the new
// selection at the buffer origin. It fails with ErrStalePaste when a change
// set was opened since the ticket was issued or a gesture is in flight.
func (s *Session) ApplyPaste(t PasteTicket, data *PixelSlice) error {
	defer s.flush()
	if data == nil || data.Width == 0 || data.Height == 0 {
		return fmt.Errorf("%w: empty clipboard image", ErrDecode)
	}
	if s.brush.Press.Pressed || s.history.Open() || t.epoch != s.history.Epoch() {
		Logger().Warn("paste rejected", "ticket", t.epoch, "epoch", s.history.Epoch(), "pressed", s.brush.Press.Pressed)
		return ErrStalePaste
	}
	return s.record(func() error {
		return s.replaceSelection(func(PixelRecorder) *Selection {
			return s.floatSelection(data, image.Point{})
		})
	})
}

// Paste applies data right away.
func (s *Session) Paste(data *PixelSlice) error {
	return s.ApplyPaste(s.BeginPaste(), data)
}

// DecodeClipboard decodes raw image bytes into a pixel slice.
func DecodeClipboard(r io.Reader) (*PixelSlice, error) {
	img, err := DecodeImage(r)
	if err != nil {
		return nil, err
	}
	return SliceFromImage(img), nil
}

// DecodeClipboardText decodes textual clipboard content: a base64 data URL
// or a remote image URL.
func DecodeClipboardText(ctx context.Context, text string) (*PixelSlice, error) {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "data:"):
		comma := strings.IndexByte(text, ',')
		if comma < 0 || !strings.HasSuffix(text[:comma], ";base64") {
			return nil, fmt.Errorf("%w: malformed data URL", ErrDecode)
		}
		raw, err := base64.StdEncoding.DecodeString(text[comma+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return DecodeClipboard(bytes.NewReader(raw))

	case utils.IsValidUrl(text):
		raw, err := utils.DownloadImage(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return DecodeClipboard(bytes.NewReader(raw))
	}
	return nil, fmt.Errorf("%w: unsupported clipboard text", ErrDecode)
}

// EncodePNG writes the slice as a png image.
func EncodePNG(w io.Writer, data *PixelSlice) error {
	if data == nil {
		return errors.New("nothing to encode")
	}
	return png.Encode(w, data.NRGBA())
}

// EncodeDataURL returns the slice as a base64 png data URL, the textual
// form copied to the clipboard.
func EncodeDataURL(data *PixelSlice) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, data); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
