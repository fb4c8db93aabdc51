package log

// callerPathPrefix 호출자(caller) 경로에서 잘라내는 모듈 경로 접두사입니다.
// 로그의 호출 위치가 cartpilot-server/internal/... 형태로 짧게 기록됩니다.
const callerPathPrefix = "github.com/darkkaiser"

// NewProductionConfig 운영 환경용 로그 설정을 반환합니다.
// 파일 중심으로 기록하며, 레벨별 분리 파일(critical/verbose)로 장애 분석을 지원합니다.
func NewProductionConfig(appName string) Options {
	opts := baseConfig(appName)
	opts.MaxAge = 30 // 30일 보관
	opts.EnableCriticalLog = true
	opts.EnableVerboseLog = true
	return opts
}

// NewDevelopmentConfig 개발 환경용 로그 설정을 반환합니다.
// 콘솔 출력을 켜고 로그 파일은 하루만 보관합니다.
func NewDevelopmentConfig(appName string) Options {
	opts := baseConfig(appName)
	opts.MaxAge = 1
	opts.EnableConsoleLog = true
	return opts
}

// baseConfig 두 환경이 공유하는 공통 설정입니다.
func baseConfig(appName string) Options {
	return Options{
		Name:             appName,
		ReportCaller:     true,
		CallerPathPrefix: callerPathPrefix,
	}
}
