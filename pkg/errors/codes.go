package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes are prefixed with the module they belong to ("REC_", "MAP_", ...) so
// that logging and metrics layers can aggregate by module without parsing
// messages.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeMessagingError     ErrorCode = "COMMON_012"
	ErrCodeGraphError         ErrorCode = "COMMON_013"
)

// Short aliases used at call sites.
const (
	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeConflict           = ErrCodeConflict
	CodeRateLimit          = ErrCodeTooManyRequests
	CodeServiceUnavailable = ErrCodeServiceUnavailable
	CodeTimeout            = ErrCodeTimeout
	CodeValidation         = ErrCodeValidation
	CodeSerialization      = ErrCodeSerialization
	CodeDatabaseError      = ErrCodeDatabaseError
	CodeCacheError         = ErrCodeCacheError
	CodeMessagingError     = ErrCodeMessagingError
	CodeGraphError         = ErrCodeGraphError
	CodeOK                 = ErrorCode("OK")
	CodeUnknown            = ErrorCode("UNKNOWN")
)

// Record module error codes.
const (
	ErrCodeRecordNotFound     ErrorCode = "REC_001"
	ErrCodeRecordInvalid      ErrorCode = "REC_002"
	ErrCodeRecordTypeUnknown  ErrorCode = "REC_003"
	ErrCodeSnapshotFailed     ErrorCode = "REC_004"
)

// Entity-mapping module error codes.
const (
	ErrCodeMappingThresholdInvalid ErrorCode = "MAP_001"
	ErrCodeMappingFailed           ErrorCode = "MAP_002"
)

// Timeline module error codes.
const (
	ErrCodeTimelineNotFound ErrorCode = "TLN_001"
	ErrCodeTimelineFailed   ErrorCode = "TLN_002"
)

// Legal-analysis module error codes.
const (
	ErrCodeLegalAnalysisFailed ErrorCode = "LEG_001"
	ErrCodeThemeUnknown        ErrorCode = "LEG_002"
)

// Approval module error codes.
const (
	ErrCodeApprovalFailed ErrorCode = "APR_001"
)

// Trend module error codes.
const (
	ErrCodeTrendWindowInvalid ErrorCode = "TRD_001"
	ErrCodeTrendFailed        ErrorCode = "TRD_002"
)

// Domain-specific aliases.
const (
	CodeRecordNotFound          = ErrCodeRecordNotFound
	CodeRecordInvalid           = ErrCodeRecordInvalid
	CodeRecordTypeUnknown       = ErrCodeRecordTypeUnknown
	CodeSnapshotFailed          = ErrCodeSnapshotFailed
	CodeMappingThresholdInvalid = ErrCodeMappingThresholdInvalid
	CodeMappingFailed           = ErrCodeMappingFailed
	CodeTimelineNotFound        = ErrCodeTimelineNotFound
	CodeTimelineFailed          = ErrCodeTimelineFailed
	CodeLegalAnalysisFailed     = ErrCodeLegalAnalysisFailed
	CodeThemeUnknown            = ErrCodeThemeUnknown
	CodeApprovalFailed          = ErrCodeApprovalFailed
	CodeTrendWindowInvalid      = ErrCodeTrendWindowInvalid
	CodeTrendFailed             = ErrCodeTrendFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeGraphError:         http.StatusInternalServerError,

	ErrCodeRecordNotFound:    http.StatusNotFound,
	ErrCodeRecordInvalid:     http.StatusBadRequest,
	ErrCodeRecordTypeUnknown: http.StatusBadRequest,
	ErrCodeSnapshotFailed:    http.StatusServiceUnavailable,

	ErrCodeMappingThresholdInvalid: http.StatusBadRequest,
	ErrCodeMappingFailed:           http.StatusInternalServerError,

	ErrCodeTimelineNotFound: http.StatusNotFound,
	ErrCodeTimelineFailed:   http.StatusInternalServerError,

	ErrCodeLegalAnalysisFailed: http.StatusInternalServerError,
	ErrCodeThemeUnknown:        http.StatusBadRequest,

	ErrCodeApprovalFailed: http.StatusInternalServerError,

	ErrCodeTrendWindowInvalid: http.StatusBadRequest,
	ErrCodeTrendFailed:        http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message broker error",
	ErrCodeGraphError:         "graph store error",

	ErrCodeRecordNotFound:    "record not found",
	ErrCodeRecordInvalid:     "record is missing required fields",
	ErrCodeRecordTypeUnknown: "unknown record type",
	ErrCodeSnapshotFailed:    "failed to snapshot record store",

	ErrCodeMappingThresholdInvalid: "invalid mapping threshold",
	ErrCodeMappingFailed:           "device entity mapping failed",

	ErrCodeTimelineNotFound: "timeline target record not found",
	ErrCodeTimelineFailed:   "timeline construction failed",

	ErrCodeLegalAnalysisFailed: "legal corpus analysis failed",
	ErrCodeThemeUnknown:        "unknown legal theme",

	ErrCodeApprovalFailed: "approval evaluation failed",

	ErrCodeTrendWindowInvalid: "invalid trend window",
	ErrCodeTrendFailed:        "trend aggregation failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
