package log

import (
	"fmt"
)

// Options 로깅 시스템 초기화에 필요한 설정값들을 담는 구조체입니다.
//
// Name을 제외한 모든 필드는 생략 가능하며, 생략된 필드에는 합리적인 기본값이 적용됩니다.
type Options struct {
	// Name 로그 파일 이름의 접두사로 사용되는 애플리케이션 이름입니다. (필수)
	Name string

	// Dir 로그 파일이 저장될 디렉토리 경로입니다. 비어있으면 "logs"가 사용됩니다.
	Dir string

	// Level 기록할 최소 로그 레벨입니다. 0이면 InfoLevel이 적용됩니다.
	Level Level

	// MaxSizeMB 로그 파일 하나당 최대 크기입니다. (단위: MB, 0이면 기본값 적용)
	MaxSizeMB int

	// MaxBackups 로테이션 된 로그 파일의 최대 보관 개수입니다. (0이면 기본값 적용)
	MaxBackups int

	// MaxAge 로테이션 된 로그 파일의 최대 보관 일수입니다. (0이면 무제한)
	MaxAge int

	// EnableConsoleLog 로그를 표준 출력(stdout)에도 함께 출력할지 여부입니다.
	EnableConsoleLog bool

	// EnableCriticalLog 치명적인 오류(Error 이상) 레벨의 로그를 별도 파일로 분리할지 여부입니다.
	EnableCriticalLog bool

	// EnableVerboseLog 상세 정보(Debug, Trace) 레벨의 로그를 별도 파일로 분리할지 여부입니다.
	EnableVerboseLog bool

	// ReportCaller 호출자 정보(함수명, 라인번호)를 로그에 기록할지 여부입니다.
	ReportCaller bool

	// CallerPathPrefix 호출자 정보에서 축약할 경로 접두사입니다.
	// 예: "github.com/darkkaiser" 설정 시 해당 접두사가 "..."으로 축약됩니다.
	CallerPathPrefix string
}

// Validate Options의 설정값들이 유효한지 검증합니다.
func (o Options) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("로그 파일 이름(Name)은 필수 항목입니다")
	}
	if o.MaxSizeMB < 0 {
		return fmt.Errorf("로그 파일 최대 크기(MaxSizeMB)는 음수일 수 없습니다: %d", o.MaxSizeMB)
	}
	if o.MaxBackups < 0 {
		return fmt.Errorf("로그 파일 최대 보관 개수(MaxBackups)는 음수일 수 없습니다: %d", o.MaxBackups)
	}
	if o.MaxAge < 0 {
		return fmt.Errorf("로그 파일 최대 보관 일수(MaxAge)는 음수일 수 없습니다: %d", o.MaxAge)
	}
	return nil
}
