package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCodeWalksChain(t *testing.T) {
	inner := WithCode(CodeSynthesis, "service down")
	outer := Wrap(inner, "aborting run")

	assert.Equal(t, CodeSynthesis, GetCode(outer))
	assert.Equal(t, CodeSynthesis, GetCode(inner))
	assert.Equal(t, 0, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, 0, GetCode(nil))
}

func TestHasCode(t *testing.T) {
	err := Wrap(WithCode(CodeDuplicateRequest, "dup"), "request failed")
	assert.True(t, HasCode(err, CodeDuplicateRequest))
	assert.False(t, HasCode(err, CodeGeneration))
	assert.True(t, IsDuplicateRequest(err))
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "whatever"))
	assert.Nil(t, WrapCode(CodeGeneration, nil, "whatever"))
}

func TestErrorMessageComposition(t *testing.T) {
	err := Wrap(fmt.Errorf("timeout"), "generation failed")
	assert.Equal(t, "generation failed: timeout", err.Error())
	assert.Equal(t, "timeout", Cause(err).Error())
}
