package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorIsMatchesType(t *testing.T) {
	err := fmt.Errorf("save lists: %w", StorageFailure("write preferences", io.ErrShortWrite))

	assert.True(t, errors.Is(err, ErrStorageFailure))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, io.ErrShortWrite))
	assert.Equal(t, ErrorTypeStorageFailure, TypeOf(err))
}

func TestDomainErrorMessage(t *testing.T) {
	assert.Equal(t, "[invalid_input] selection too small", InvalidInput("selection too small", nil).Error())
	assert.Equal(t, "[decode_failure] decode image: boom", DecodeFailure("decode image", errors.New("boom")).Error())
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}
