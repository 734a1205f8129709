package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{"unknown_task", errors.ErrUnknownTask, "task 3 is gone", "[UNKNOWN_TASK] task 3 is gone"},
		{"template", errors.ErrTemplate, "bad directive", "[TEMPLATE] bad directive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrIO, "write"))

	base := stderrors.New("broken pipe")
	err := errors.Wrap(base, errors.ErrIO, "write frame")
	assert.Equal(t, "[IO] write frame: broken pipe", err.Error())
	assert.True(t, stderrors.Is(err, base))

	wrapped := fmt.Errorf("render: %w", err)
	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrIO))
	assert.Equal(t, errors.ErrIO, errors.GetErrorCode(wrapped))
}

func TestIsMatchesByCode(t *testing.T) {
	a := errors.New(errors.ErrClosed, "one")
	b := errors.New(errors.ErrClosed, "two")
	c := errors.New(errors.ErrTaskLimit, "three")

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestInvalidWindowSize(t *testing.T) {
	err := errors.InvalidWindowSize(1, 2, "window-with-title")

	require.Equal(t, errors.ErrInvalidWindowSize, err.Code)
	details := errors.GetErrorDetails(err)
	assert.Equal(t, 1, details["requested"])
	assert.Equal(t, 2, details["minimum"])
	assert.Equal(t, "window-with-title", details["mode_name"])
	assert.Equal(t, errors.CategoryModeCreation, err.Category())
}

func TestCategories(t *testing.T) {
	tests := []struct {
		err  error
		want errors.Category
	}{
		{errors.MissingParameter("window", "size"), errors.CategoryModeCreation},
		{errors.Validation("bad"), errors.CategoryModeCreation},
		{errors.Implementation("panic"), errors.CategoryModeCreation},
		{errors.UnknownTask(7), errors.CategoryTaskOperation},
		{errors.CapabilityNotSupported("title", "limited"), errors.CategoryTaskOperation},
		{errors.Template(3, "nested"), errors.CategoryRender},
		{errors.IO(stderrors.New("x"), "flush"), errors.CategoryIO},
		{stderrors.New("plain"), errors.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errors.GetCategory(tt.err))
		})
	}
}

func TestCapabilityNotSupportedDetails(t *testing.T) {
	err := errors.CapabilityNotSupported("title", "limited")
	assert.Equal(t, "[CAPABILITY_NOT_SUPPORTED] title is not supported by limited mode", err.Error())
	assert.Equal(t, "title", err.Details["capability"])
}
