// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logutil builds the command-line logger.
package logutil

import (
	"io"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels are the accepted values of the --log-level flag.
var Levels = []string{"debug", "info", "warning", "error"}

// Flags holds the logging options of a command.
type Flags struct {
	Level      string
	JSON       bool
	NoColor    bool
	Timestamps bool
}

// Register adds the logging flags to app.
func (f *Flags) Register(app *kingpin.Application) {
	app.Flag("log-level", "Console log level.").Envar("PARSTAT_LOG_LEVEL").Default("info").EnumVar(&f.Level, Levels...)
	app.Flag("json-log", "Log to the console in JSON format.").Envar("PARSTAT_JSON_LOG").BoolVar(&f.JSON)
	app.Flag("no-color", "Disable color output.").Envar("PARSTAT_NO_COLOR").BoolVar(&f.NoColor)
	app.Flag("log-timestamps", "Prefix console log lines with a timestamp.").Hidden().BoolVar(&f.Timestamps)
}

// NewLogger returns a logger writing to w.
func (f *Flags) NewLogger(w io.Writer) *zap.Logger {
	ec := zapcore.EncoderConfig{
		LevelKey:         "l",
		MessageKey:       "m",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}
	if f.Timestamps {
		ec.TimeKey = "t"
		if !f.JSON {
			ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		}
	}

	var enc zapcore.Encoder
	if f.JSON {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec.EncodeLevel = func(l zapcore.Level, pae zapcore.PrimitiveArrayEncoder) {
			// info lines have no prefix.
			if l == zap.InfoLevel {
				return
			}
			if f.NoColor {
				zapcore.CapitalLevelEncoder(l, pae)
			} else {
				zapcore.CapitalColorLevelEncoder(l, pae)
			}
		}
		enc = zapcore.NewConsoleEncoder(ec)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), LevelFromName(f.Level)))
}

// LevelFromName maps a --log-level value to a zap level. Unknown names
// enable only fatal messages.
func LevelFromName(name string) zapcore.LevelEnabler {
	switch name {
	case "debug":
		return zap.DebugLevel
	case "info", "":
		return zap.InfoLevel
	case "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.FatalLevel
	}
}
