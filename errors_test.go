package shopsheet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("boom")

	de := &DecodeError{Err: cause}
	assert.ErrorIs(t, de, cause)
	assert.True(t, IsDecodeError(de))
	assert.True(t, IsDecodeError(fmt.Errorf("wrapped: %w", de)))
	assert.False(t, IsIOError(de))

	ioe := &IOError{Path: "shops_data.xlsx", Op: "save", Err: cause}
	assert.ErrorIs(t, ioe, cause)
	assert.True(t, IsIOError(ioe))
	assert.Contains(t, ioe.Error(), "shops_data.xlsx")
	assert.False(t, IsDecodeError(ioe))
}
