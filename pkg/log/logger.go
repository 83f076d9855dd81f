package log

import "time"

// Logger is the sink for cart store, plugin and HTTP events.
// Messages are short and lowercase; context goes into fields.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// Key names the storage key of the cart snapshot.
func Key(key string) Field {
	return Field{Key: "key", Value: key}
}

// Op names the cart operation being logged, such as "add" or "reload".
func Op(op string) Field {
	return Field{Key: "op", Value: op}
}

// Path names a filesystem path or a request path.
func Path(path string) Field {
	return Field{Key: "path", Value: path}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err attaches err under "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
