package errors

import (
	"path/filepath"
	"runtime"
)

const (
	// callerSkip 에러 생성 지점을 0번째 프레임으로 만들기 위해 건너뛰는 깊이입니다.
	// runtime.Callers → captureStack → New/Wrap 계열 함수의 3단계를 제외합니다.
	callerSkip = 3

	// maxStackDepth 수집하는 최대 스택 깊이입니다. 에러 발생 지점 주변만 있으면
	// 원인 추적에 충분하므로 깊게 수집하지 않습니다.
	maxStackDepth = 5
)

// StackFrame 에러가 만들어진 시점의 호출 스택 한 단계를 나타냅니다.
type StackFrame struct {
	File     string // 파일 이름 (경로 제외)
	Line     int    // 줄 번호
	Function string // 함수 이름
}

// captureStack 현재 호출 스택을 최대 maxStackDepth 단계까지 수집합니다.
func captureStack(skip int) []StackFrame {
	pc := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pc)
	if n == 0 {
		return nil
	}

	frames := make([]StackFrame, 0, n)
	iter := runtime.CallersFrames(pc[:n])
	for {
		frame, more := iter.Next()
		frames = append(frames, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: frame.Function,
		})
		if !more {
			break
		}
	}
	return frames
}
