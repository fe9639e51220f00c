package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured field keys shared across packages.
const (
	FieldRequestID     = "request_id"
	FieldVolunteerID   = "volunteer_id"
	FieldNeedID        = "need_id"
	FieldApplicationID = "application_id"
	FieldUserID        = "user_id"

	// FieldStrategy names the tag extraction strategy that produced a result.
	FieldStrategy = "tag_strategy"
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with an empty key or value.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// Record identifies the volunteers, needs and applications a log entry is about.
type Record struct {
	VolunteerID   string
	NeedID        string
	ApplicationID string
	UserID        string
}

// Fields returns the non-empty identifiers of r.
func (r Record) Fields() []zap.Field {
	return StringFields(
		StringField{Key: FieldApplicationID, Value: r.ApplicationID},
		StringField{Key: FieldNeedID, Value: r.NeedID},
		StringField{Key: FieldVolunteerID, Value: r.VolunteerID},
		StringField{Key: FieldUserID, Value: r.UserID},
	)
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// WithCommonFields tags a logger with the generative provider and model that
// back the tag extractor.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)...)
}
