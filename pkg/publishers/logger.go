package publishers

// Logger receives sink delivery entries: successes at debug, failures at error.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// sinkLogger tags delivery entries with the publisher id and type.
type sinkLogger struct {
	log Logger
	id  string
	typ string
}

func newSinkLogger(log Logger, id, typ string) sinkLogger {
	if log == nil {
		log = noopLogger{}
	}
	return sinkLogger{log: log, id: id, typ: typ}
}

func (s sinkLogger) fields(evt Event) map[string]any {
	return map[string]any{
		"publisher_id":   s.id,
		"publisher_type": s.typ,
		"event_id":       evt.ID,
		"bot_id":         evt.Vote.BotID,
	}
}

func (s sinkLogger) delivered(evt Event, messageID string) {
	f := s.fields(evt)
	if messageID != "" {
		f["message_id"] = messageID
	}
	s.log.DebugObj("publisher delivered event", "publisher_delivery", f)
}

func (s sinkLogger) failed(evt Event, err error) {
	f := s.fields(evt)
	f["error"] = err.Error()
	s.log.ErrorObj("publisher send failed", "publisher_error", f)
}
