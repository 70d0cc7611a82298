package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Logger wraps a sugared zap logger and scrubs sensitive values from
// structured fields before they hit a sink.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, scrub(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, scrub(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, scrub(keysAndValues)...)
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(scrub(keysAndValues)...)}
}

// secretKeys are dropped outright, subjectKeys are replaced with a salted
// hash so log lines stay correlatable without leaking who they are about.
var (
	secretKeys  = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "email", "refresh"}
	subjectKeys = []string{"user_id", "client_id", "owner_id", "instructor_id", "external_id"}
)

var redactCfg struct {
	once    sync.Once
	enabled bool
	salt    string
}

func redactionOn() bool {
	redactCfg.once.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			redactCfg.enabled = false
		default:
			redactCfg.enabled = true
		}
		redactCfg.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return redactCfg.enabled
}

func scrub(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionOn() {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		out[i+1] = scrubValue(strings.ToLower(key), out[i+1])
	}
	return out
}

func scrubValue(key string, val interface{}) interface{} {
	for _, needle := range secretKeys {
		if strings.Contains(key, needle) {
			return "[REDACTED]"
		}
	}
	for _, needle := range subjectKeys {
		if strings.Contains(key, needle) {
			return hashValue(val)
		}
	}
	if s, ok := val.(string); ok && looksLikeJWT(s) {
		return "[REDACTED]"
	}
	return val
}

func hashValue(val interface{}) string {
	var raw string
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		raw = t
	case fmt.Stringer:
		raw = t.String()
	default:
		raw = fmt.Sprint(val)
	}
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(redactCfg.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}
