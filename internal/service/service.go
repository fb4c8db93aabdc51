// Package service 서버를 구성하는 서비스들의 공통 수명주기 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 서버가 기동/종료 시 일괄 관리하는 서비스의 공통 인터페이스입니다.
//
// Start()는 비동기로 동작을 시작한 뒤 즉시 반환해야 하며,
// serviceStopCtx가 취소되면 내부 고루틴을 정리하고 serviceStopWG.Done()을 호출해야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
