package async

// Logger receives per-request diagnostics. Failed requests are reported at
// warn level, everything else at debug.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type discard struct{}

func (discard) DebugObj(string, string, interface{}) {}
func (discard) WarnObj(string, string, interface{})  {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return discard{}
	}
	return log
}
