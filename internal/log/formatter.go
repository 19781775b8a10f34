package log

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// formatter renders entries through a pattern string. Supported verbs are
// %time, %level, %msg, %field, %caller, %func and %goroutine.
type formatter struct {
	pattern string
	time    string
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	out := f.pattern
	out = strings.Replace(out, "%time", entry.Time.Format(f.time), 1)
	out = strings.Replace(out, "%level", entry.Level.String(), 1)
	out = strings.Replace(out, "%field", joinFields(entry), 1)
	out = strings.Replace(out, "%msg", entry.Message, 1)
	out = strings.Replace(out, "%caller", callerOf(entry), 1)
	out = strings.Replace(out, "%func", funcOf(entry), 1)
	out = strings.Replace(out, "%goroutine", goroutineID(), 1)
	return []byte(out), nil
}

// callerOf renders package/file:line for the logging call site.
func callerOf(entry *logrus.Entry) string {
	if entry.HasCaller() {
		file := entry.Caller.File
		if idx := strings.LastIndex(file, "/"); idx != -1 && idx+1 < len(file) {
			file = file[idx+1:]
		}
		pkg := ""
		if fn := entry.Caller.Function; fn != "" {
			if parts := strings.Split(fn, "."); len(parts) > 1 {
				pkgPath := strings.Split(parts[0], "/")
				pkg = pkgPath[len(pkgPath)-1]
			}
		}
		return fmt.Sprintf("%s/%s:%d", pkg, file, entry.Caller.Line)
	}
	return "unknown"
}

// funcOf renders the bare function or method name of the call site.
func funcOf(entry *logrus.Entry) string {
	if entry.HasCaller() {
		name := entry.Caller.Function
		if idx := strings.LastIndex(name, "."); idx != -1 && idx+1 < len(name) {
			return name[idx+1:]
		}
		return name
	}
	return "unknown"
}

// goroutineID parses the id out of the first runtime.Stack line.
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	stack := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if fields := strings.Fields(stack); len(fields) > 0 {
		return fields[0]
	}
	return "unknown"
}

func joinFields(entry *logrus.Entry) string {
	if len(entry.Data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, key+"="+fmt.Sprint(entry.Data[key]))
	}
	return strings.Join(fields, ",")
}
