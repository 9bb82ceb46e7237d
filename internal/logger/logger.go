package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevel()

// Init builds the global zap logger for environment. Development gets the
// console encoder at debug level, everything else JSON at info level.
func Init(environment string) error {
	var conf zap.Config
	if environment == "development" {
		conf = zap.NewDevelopmentConfig()
		level.SetLevel(zapcore.DebugLevel)
	} else {
		conf = zap.NewProductionConfig()
		level.SetLevel(zapcore.InfoLevel)
	}
	conf.Level = level

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}
	zap.ReplaceGlobals(l)

	return nil
}

// SetLevel changes the level of the global logger at runtime.
func SetLevel(lvl string) error {
	if lvl == "" {
		return nil
	}

	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return fmt.Errorf("level.UnmarshalText -> %w", err)
	}

	return nil
}

func Level() zapcore.Level {
	return level.Level()
}
