package approval

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"loginguard/pkg/platform/sentinel"
)

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("session: %w", newError(KindLookup, "get request context", sentinel.ErrNotFound))

	assert.True(t, IsKind(err, KindLookup))
	assert.False(t, IsKind(err, KindInteraction))
	assert.False(t, IsKind(errors.New("plain"), KindLookup))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.Equal(t, "session: approval get request context [lookup]: not found", err.Error())
}
