package middleware

import (
	"io"

	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// Logger Echo의 log.Logger 인터페이스를 구현하는 Logrus 어댑터입니다.
//
// Echo는 자체 Logger 인터페이스(github.com/labstack/gommon/log.Logger)를
// 정의하고 있으며, 이 어댑터를 통해 Echo 내부 로그가 Logrus로 출력됩니다.
// 대부분의 메서드는 Logrus의 해당 메서드로 단순 위임합니다.
type Logger struct {
	*logrus.Logger
}

// Output 현재 출력 Writer를 반환합니다.
func (l Logger) Output() io.Writer {
	return l.Out
}

func (l Logger) SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func (l Logger) Prefix() string {
	return ""
}

func (l Logger) SetPrefix(string) {
	// Echo의 Prefix 기능은 사용하지 않음
}

// Level Logrus의 로그 레벨을 Echo의 로그 레벨로 변환합니다.
func (l Logger) Level() log.Lvl {
	switch l.Logger.Level {
	case logrus.DebugLevel:
		return log.DEBUG
	case logrus.InfoLevel:
		return log.INFO
	case logrus.WarnLevel:
		return log.WARN
	case logrus.ErrorLevel:
		return log.ERROR
	}
	return log.OFF
}

// SetLevel Echo의 로그 레벨을 Logrus의 로그 레벨로 변환하여 설정합니다.
func (l Logger) SetLevel(lvl log.Lvl) {
	switch lvl {
	case log.DEBUG:
		logrus.SetLevel(logrus.DebugLevel)
	case log.INFO:
		logrus.SetLevel(logrus.InfoLevel)
	case log.WARN:
		logrus.SetLevel(logrus.WarnLevel)
	case log.ERROR:
		logrus.SetLevel(logrus.ErrorLevel)
	}
}

func (l Logger) SetHeader(string) {
	// Echo의 Header 기능은 사용하지 않음
}

func (l Logger) Print(i ...any) {
	logrus.Print(i...)
}

func (l Logger) Printf(format string, args ...any) {
	logrus.Printf(format, args...)
}

func (l Logger) Printj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Print()
}

func (l Logger) Debug(i ...any) {
	logrus.Debug(i...)
}

func (l Logger) Debugf(format string, args ...any) {
	logrus.Debugf(format, args...)
}

func (l Logger) Debugj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Debug()
}

func (l Logger) Info(i ...any) {
	logrus.Info(i...)
}

func (l Logger) Infof(format string, args ...any) {
	logrus.Infof(format, args...)
}

func (l Logger) Infoj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Info()
}

func (l Logger) Warn(i ...any) {
	logrus.Warn(i...)
}

func (l Logger) Warnf(format string, args ...any) {
	logrus.Warnf(format, args...)
}

func (l Logger) Warnj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Warn()
}

func (l Logger) Error(i ...any) {
	logrus.Error(i...)
}

func (l Logger) Errorf(format string, args ...any) {
	logrus.Errorf(format, args...)
}

func (l Logger) Errorj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Error()
}

func (l Logger) Fatal(i ...any) {
	logrus.Fatal(i...)
}

func (l Logger) Fatalf(format string, args ...any) {
	logrus.Fatalf(format, args...)
}

func (l Logger) Fatalj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Fatal()
}

func (l Logger) Panic(i ...any) {
	logrus.Panic(i...)
}

func (l Logger) Panicf(format string, args ...any) {
	logrus.Panicf(format, args...)
}

func (l Logger) Panicj(j log.JSON) {
	logrus.WithFields(logrus.Fields(j)).Panic()
}
