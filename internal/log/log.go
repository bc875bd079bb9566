package log

import (
	"io"
	"log/slog"
	"os"
)

const fileName = "reforge.log"

// Logger bundles the root logger with its adjustable level.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  io.Closer
}

// New logs to stdout and, when dir is not empty, to a size-capped file in dir.
func New(debug bool, dir string) (*Logger, error) {
	level := &slog.LevelVar{}
	var w io.Writer = os.Stdout
	var closer io.Closer

	if dir != "" {
		cf, err := openCappedFile(dir, fileName, maxLogBytes)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, cf)
		closer = cf
	}

	l := &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
		level:  level,
		file:   closer,
	}
	l.SetDebug(debug)
	return l, nil
}

// SetDebug switches the level between Debug and Info.
func (l *Logger) SetDebug(debug bool) {
	if debug {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(slog.LevelInfo)
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
