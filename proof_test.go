//go:build !ocr

package taskcards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsawler/taskcards/taskerr"
)

func TestProofNeedsOCRBuild(t *testing.T) {
	cfg := testConfig(t)
	_, err := fakes(New(testRegistry(t)).Tasks("F").Config(cfg).Proof()).Generate(context.Background())
	assert.ErrorIs(t, err, taskerr.ErrConfiguration)
	assert.Contains(t, err.Error(), "-tags ocr")
}
