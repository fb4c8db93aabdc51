package log

import (
	"errors"
	"io"
	"sync"
)

// closer 로깅 시스템이 생성한 리소스(파일 핸들 등)를 추적하고 해제하는 객체입니다.
//
// Close()는 여러 번 호출되어도 안전하며, 최초 호출 시의 결과를 반환합니다.
type closer struct {
	closeOnce sync.Once
	closeErr  error

	closers []io.Closer
	hook    *hook
}

var _ io.Closer = (*closer)(nil)

// Close Hook의 Writer 연결을 해제한 후 보유한 모든 리소스를 닫습니다.
func (c *closer) Close() error {
	c.closeOnce.Do(func() {
		// 닫힌 파일에 로그가 기록되지 않도록 Writer 연결부터 해제합니다.
		if c.hook != nil {
			c.hook.detach()
		}

		var errs []error
		for _, cl := range c.closers {
			if cl == nil {
				continue
			}
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		c.closeErr = errors.Join(errs...)
	})

	return c.closeErr
}
