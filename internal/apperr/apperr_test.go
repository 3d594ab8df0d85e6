package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBadRequest, KindOf(BadRequest("bad")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized("nope")))
	assert.Equal(t, KindInsufficientBalance, KindOf(InsufficientBalance("broke")))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading account: %w", NotFound("account %s", "abc"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "loading account: account abc", err.Error())
}

func TestMessageFormatting(t *testing.T) {
	err := InsufficientBalance("insufficient balance: %s available, %s required", "10.00", "25.00")
	assert.Equal(t, "insufficient balance: 10.00 available, 25.00 required", err.Error())
}
