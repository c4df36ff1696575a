package telemetry

import "codeberg.org/mutker/cpumon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDir    = errors.ErrorCode("telemetry_invalid_dir")

	// Storage Errors
	ErrStorageInit    = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageAccess  = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageClose   = errors.ErrorCode("telemetry_storage_close_failed")
	ErrFlushFailed    = errors.ErrorCode("telemetry_flush_failed")
	ErrRotationFailed = errors.ErrorCode("telemetry_rotation_failed")

	// Format Errors
	ErrRecordFormat   = errors.ErrorCode("telemetry_record_format")
	ErrSchemaMismatch = errors.ErrorCode("telemetry_schema_mismatch")
)
