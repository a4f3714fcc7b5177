package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := AlreadyExists("docs")

	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.True(t, errors.Is(err, &Error{Kind: KindAlreadyExists, Subject: "docs"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindAlreadyExists, Subject: "other"}))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestError_WrappedChain(t *testing.T) {
	backend := errors.New("connection refused")
	err := fmt.Errorf("add texts: %w", Write("docs", backend))

	assert.True(t, errors.Is(err, ErrWrite))
	assert.True(t, errors.Is(err, backend))
	assert.Equal(t, KindWrite, KindOf(err))
}

func TestError_NestedKinds(t *testing.T) {
	err := Creation("docs", AlreadyExists("docs"))

	assert.Equal(t, KindCreation, KindOf(err))
	assert.True(t, errors.Is(err, ErrCreation))
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestError_Message(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expect      string
	}{
		{description: "subject only", err: NotFound("docs"), expect: "index not found: docs"},
		{description: "with cause", err: Read("docs", errors.New("timeout")), expect: "failed to read collection: docs: timeout"},
		{description: "validation", err: Validation("unknown splitter %q", "xml"), expect: `unknown splitter "xml"`},
		{description: "bare kind", err: &Error{Kind: KindEmbedding}, expect: "embedding"},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.err.Error(), testCase.description)
	}
}

func TestKindOf_Plain(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
