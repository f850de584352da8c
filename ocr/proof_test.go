package ocr

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tsawler/taskcards/model"
)

// scripted answers in call order and fails on calls it has no answer for.
type scripted struct {
	mu      sync.Mutex
	answers []string
	calls   int
}

func (s *scripted) RecognizeImage(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.answers) {
		return "", errors.New("tesseract crashed")
	}
	s.calls++
	return s.answers[s.calls-1], nil
}

func TestProoferRecordsBlankCards(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &scripted{answers: []string{"x = 4", "", "y", ""}}
	p := NewProofer(rec, zap.New(core))
	card := image.NewRGBA(image.Rect(0, 0, 8, 8))

	ctx := context.Background()
	require.NoError(t, p.Card(ctx, 2, model.TopLeft, card))
	require.NoError(t, p.Card(ctx, 2, model.BottomRight, card))
	require.NoError(t, p.Card(ctx, 1, model.TopRight, card))
	require.NoError(t, p.Card(ctx, 1, model.TopLeft, card))

	assert.Equal(t, []CardRef{{1, model.TopLeft}, {2, model.BottomRight}}, p.Blank())
	assert.Equal(t, 2, logs.FilterMessage("card has no legible text").Len())
	assert.Equal(t, "page 2 bottom-right", p.Blank()[1].String())
}

func TestProoferRecognitionError(t *testing.T) {
	p := NewProofer(&scripted{}, nil)
	err := p.Card(context.Background(), 1, model.TopLeft, image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1 top-left")
}

func TestProoferCanceled(t *testing.T) {
	p := NewProofer(&scripted{answers: []string{"a"}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Card(ctx, 1, model.TopLeft, image.NewRGBA(image.Rect(0, 0, 2, 2))), context.Canceled)
}
