package log

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// hook 포맷팅 된 로그를 파일/콘솔 Writer로 분배하는 중앙 라우터입니다.
//
// 라우팅 규칙:
//   - mainWriter: 모든 레벨의 로그
//   - criticalWriter: Error 이상 레벨의 로그 (설정된 경우)
//   - verboseWriter: Debug, Trace 레벨의 로그 (설정된 경우)
//   - consoleWriter: 모든 레벨의 로그 (설정된 경우)
type hook struct {
	mu sync.Mutex

	formatter logrus.Formatter

	mainWriter     io.Writer
	criticalWriter io.Writer
	verboseWriter  io.Writer
	consoleWriter  io.Writer
}

var _ logrus.Hook = (*hook)(nil)

// Levels 이 Hook이 처리할 로그 레벨 목록을 반환합니다.
func (h *hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 로그 Entry를 포맷팅한 후 라우팅 규칙에 따라 각 Writer에 기록합니다.
func (h *hook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mainWriter != nil {
		if _, err := h.mainWriter.Write(b); err != nil {
			return err
		}
	}

	if h.criticalWriter != nil && entry.Level <= logrus.ErrorLevel {
		if _, err := h.criticalWriter.Write(b); err != nil {
			return err
		}
	}

	if h.verboseWriter != nil && entry.Level >= logrus.DebugLevel {
		if _, err := h.verboseWriter.Write(b); err != nil {
			return err
		}
	}

	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(b); err != nil {
			return err
		}
	}

	return nil
}

// detach 모든 Writer 연결을 해제합니다.
// 로깅 리소스 해제 이후에 도착하는 로그가 닫힌 파일에 기록되는 것을 방지합니다.
func (h *hook) detach() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mainWriter = nil
	h.criticalWriter = nil
	h.verboseWriter = nil
	h.consoleWriter = nil
}
