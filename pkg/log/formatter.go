package log

import (
	"github.com/sirupsen/logrus"
)

// silentFormatter 아무것도 출력하지 않는 포맷터입니다.
//
// Logrus는 출력 대상이 io.Discard라도 포맷팅 비용을 지불하므로,
// 루트 로거에는 이 포맷터를 설정하고 실제 포맷팅은 hook에서 수행합니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}
