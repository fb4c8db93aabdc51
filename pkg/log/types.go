package log

import (
	"github.com/sirupsen/logrus"
)

// 호출 측이 logrus를 직접 임포트하지 않도록 필요한 타입만 별칭으로 노출합니다.
type (
	// Level 로그 심각도 레벨입니다.
	Level = logrus.Level

	// Fields 구조화 로그에 첨부하는 키-값 필드 집합입니다.
	Fields = logrus.Fields
)

// 심각도가 높은 순서대로 정의된 로그 레벨입니다.
const (
	// PanicLevel 기록 직후 panic()을 호출합니다. 복구 불가능한 내부 오류에만 사용합니다.
	PanicLevel Level = logrus.PanicLevel

	// FatalLevel 기록 직후 os.Exit(1)로 프로세스를 종료합니다. 기동 실패 등 진행 불가 상황에 사용합니다.
	FatalLevel Level = logrus.FatalLevel

	// ErrorLevel 프로세스는 계속 동작하지만 관리자의 개입이나 수정이 필요한 오류입니다.
	ErrorLevel Level = logrus.ErrorLevel

	// WarnLevel 당장 오류는 아니지만 주의가 필요한 상태입니다.
	WarnLevel Level = logrus.WarnLevel

	// InfoLevel 정상 동작 흐름과 상태 변화를 기록합니다. 레벨 미지정 시 기본값입니다.
	InfoLevel Level = logrus.InfoLevel

	// DebugLevel 문제 해결을 위한 상세 정보입니다.
	DebugLevel Level = logrus.DebugLevel

	// TraceLevel 가장 세밀한 추적 정보입니다. 디버그 모드에서 활성화됩니다.
	TraceLevel Level = logrus.TraceLevel
)
