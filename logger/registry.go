package logger

import "sync"

// named maps component names to loggers registered for them.
var named sync.Map

// Register makes l the logger Get returns for name.
func Register(name string, l *Logger) {
	named.Store(name, l)
}

// Get returns the logger registered for name, or the global logger tagged
// with component=name.
func Get(name string) *Logger {
	if l, ok := named.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}
