package common_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obielum/doctrack/internal/common"
)

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := common.NewAppError(common.CodeUploadNetwork, "network trouble", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), common.CodeUploadNetwork)
	require.Contains(t, err.Error(), "network trouble")
	require.Contains(t, err.Error(), "connection reset")
}

func TestAppErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := common.NewAppError(common.CodeTooLarge, "too big", nil)
	require.Equal(t, "TOO_LARGE: too big", err.Error())
	require.Nil(t, errors.Unwrap(err))
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	inner := common.NewAppError(common.CodeUnsupportedType, "bad type", nil)
	wrapped := common.WrapError(inner, "validate")

	require.Equal(t, common.CodeUnsupportedType, common.ErrorCode(wrapped))
	require.Equal(t, "", common.ErrorCode(errors.New("plain")))
	require.Equal(t, "", common.ErrorCode(nil))
}

func TestWrapErrorNil(t *testing.T) {
	t.Parallel()
	require.NoError(t, common.WrapError(nil, "noop"))
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{50 * 1024 * 1024, "50.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, common.FormatBytes(tc.in), "FormatBytes(%d)", tc.in)
	}
}
