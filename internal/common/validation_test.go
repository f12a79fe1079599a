package common_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/obielum/doctrack/internal/common"
)

func TestValidatorRequired(t *testing.T) {
	t.Parallel()

	v := common.NewValidator()
	v.Field("path", "", common.Required)
	v.Field("name", "report.pdf", common.Required)

	require.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 1)
	require.Equal(t, "path", v.Errors()[0].Field)
	require.Error(t, v.Error())
	require.Contains(t, v.ErrorMessage(), "path")
}

func TestValidatorRequiredTrimsWhitespace(t *testing.T) {
	t.Parallel()

	v := common.NewValidator()
	v.Field("path", "   ", common.Required)
	require.True(t, v.HasErrors())
}

func TestValidatorUUID(t *testing.T) {
	t.Parallel()

	v := common.NewValidator()
	v.Field("document_id", uuid.New().String(), common.UUID)
	require.False(t, v.HasErrors())
	require.NoError(t, v.Error())

	v = common.NewValidator()
	v.Field("document_id", "not-a-uuid", common.UUID)
	require.True(t, v.HasErrors())
}

func TestValidateAndReturnError(t *testing.T) {
	t.Parallel()

	v := common.NewValidator()
	v.Field("document_id", "doc-1", common.Required)
	require.NoError(t, common.ValidateAndReturnError(v))

	v = common.NewValidator()
	v.Field("document_id", "", common.Required)
	err := common.ValidateAndReturnError(v)
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMaxLength(t *testing.T) {
	t.Parallel()

	require.Nil(t, common.MaxLength("name", "short", 10))
	require.NotNil(t, common.MaxLength("name", "much too long for this", 10))
	require.Nil(t, common.MaxLength("name", 42, 10), "non-strings pass through")
}
