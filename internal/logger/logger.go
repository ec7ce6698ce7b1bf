package logger

import (
	"os"
	"sort"

	"github.com/charmbracelet/log"
)

var std = log.Default()

func Init() {
	std = log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
	})
	std.Info("logger initialized")
}

// keyvals flattens a field map into the key/value pairs the backend
// expects. Keys are sorted so log lines are stable.
func keyvals(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}

func Info(msg string, fields map[string]any) {
	std.Info(msg, keyvals(fields)...)
}

func Warn(msg string, fields map[string]any) {
	std.Warn(msg, keyvals(fields)...)
}

func Error(msg string, fields map[string]any) {
	std.Error(msg, keyvals(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	std.Fatal(msg, keyvals(fields)...)
}
