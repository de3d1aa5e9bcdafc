// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/MedReg-Intelligence/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"record not found", errors.CodeRecordNotFound, "record reg-2024-0042 not found"},
		{"invalid param", errors.CodeInvalidParam, "window days must be positive"},
		{"timeline not found", errors.CodeTimelineNotFound, "unknown device cluster"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeRecordNotFound, "record missing")
	assert.Equal(t, "[REC_001] record missing", ae.Error())

	withDetail := ae.WithDetail("id=abc")
	assert.Equal(t, "[REC_001] record missing: id=abc", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeRecordNotFound, "gone")
	outer := errors.Wrap(inner, errors.CodeUnknown, "while building timeline")

	require.NotNil(t, outer)
	assert.Equal(t, errors.CodeRecordNotFound, outer.Code)
	assert.Same(t, inner, outer.Cause)
}

func TestWrap_ChainTraversal(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("connection refused")
	mid := errors.Wrap(root, errors.CodeDatabaseError, "list regulatory updates")
	top := errors.Wrap(mid, errors.CodeSnapshotFailed, "snapshot record store")

	assert.True(t, stderrors.Is(top, root))
	assert.True(t, errors.IsCode(top, errors.CodeDatabaseError))
	assert.True(t, errors.IsCode(top, errors.CodeSnapshotFailed))
	assert.False(t, errors.IsCode(top, errors.CodeCacheError))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"generic not found", errors.NotFound("nope"), true},
		{"record not found", errors.New(errors.CodeRecordNotFound, "nope"), true},
		{"timeline not found", errors.New(errors.CodeTimelineNotFound, "nope"), true},
		{"wrapped not found", errors.Wrap(errors.NotFound("inner"), errors.CodeInternal, "outer"), true},
		{"internal", errors.Internal("boom"), false},
		{"plain error", fmt.Errorf("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, errors.IsNotFound(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeApprovalFailed,
		errors.GetCode(errors.New(errors.CodeApprovalFailed, "boom")))
}

func TestValidation_CarriesFieldDetail(t *testing.T) {
	t.Parallel()

	ae := errors.Validation("window_days", "must be positive")
	assert.Equal(t, errors.CodeValidation, ae.Code)
	assert.True(t, strings.Contains(ae.Detail, "window_days"))
}

func TestWithCause_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.Internal("base")
	cause := fmt.Errorf("root")
	derived := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.Same(t, cause, derived.Cause)
}
