package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tsawler/taskcards/model"
)

// ErrOCRNotEnabled is returned when OCR is used in a build without the
// "ocr" tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer extracts text from an encoded image.
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// CardRef names one card of a bordered document.
type CardRef struct {
	Page     int
	Quadrant model.Quadrant
}

func (r CardRef) String() string {
	return fmt.Sprintf("page %d %s", r.Page, r.Quadrant)
}

// Proofer checks that every finished card still carries legible text. Its
// Card method matches the compositor's card callback and may be called
// from several goroutines; recognition itself is serialized.
type Proofer struct {
	rec    Recognizer
	logger *zap.Logger

	mu    sync.Mutex
	blank []CardRef
}

// NewProofer creates a proofer. A nil logger discards output.
func NewProofer(rec Recognizer, logger *zap.Logger) *Proofer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proofer{rec: rec, logger: logger}
}

// Card recognizes the text of one card and records it as blank when none
// is found. Only recognition failures are errors.
func (p *Proofer) Card(ctx context.Context, page int, q model.Quadrant, card image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return fmt.Errorf("encoding card: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ref := CardRef{Page: page, Quadrant: q}
	text, err := p.rec.RecognizeImage(buf.Bytes())
	if err != nil {
		return fmt.Errorf("proofing %s: %w", ref, err)
	}
	if text == "" {
		p.blank = append(p.blank, ref)
		p.logger.Warn("card has no legible text", zap.Int("page", page), zap.Stringer("quadrant", q))
		return nil
	}
	p.logger.Debug("card proofed", zap.Int("page", page), zap.Stringer("quadrant", q), zap.Int("chars", len(text)))
	return nil
}

// Blank returns the cards without legible text in page, then quadrant,
// order.
func (p *Proofer) Blank() []CardRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]CardRef(nil), p.blank...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Quadrant < out[j].Quadrant
	})
	return out
}
