package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(CodeBufferTooSmall, "need %d bytes, have %d", 8, 3)
	wrapped := pkgerrors.Wrap(err, "decode block")

	assert.True(t, stderrors.Is(wrapped, ErrBufferTooSmall))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidInput))
	assert.Equal(t, CodeBufferTooSmall, CodeOf(wrapped))
}

func TestCodeOfUncoded(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestErrorRendersJSON(t *testing.T) {
	err := NewError(CodeInvalidCommand, "got 9")
	assert.JSONEq(t, `{"code":"invalid_command","message":"got 9"}`, err.Error())
}
