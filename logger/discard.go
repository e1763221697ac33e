package logger

type discardLogger struct{}

// Discard returns a Logger that drops every record.
func Discard() Logger { return discardLogger{} }

func (discardLogger) Debug(string, ...any) {}

func (discardLogger) Info(string, ...any) {}

func (discardLogger) Warn(string, ...any) {}

func (discardLogger) Error(string, ...any) {}

func (d discardLogger) With(...any) Logger { return d }

func (discardLogger) Level() Level { return ErrorLevel }

func (discardLogger) SetLevel(Level) {}
