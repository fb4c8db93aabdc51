package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	"github.com/stretchr/testify/assert"
)

// TestAppMetadata는 애플리케이션의 기본 메타데이터 설정이 올바른지 검증합니다.
func TestAppMetadata(t *testing.T) {
	t.Parallel()

	t.Run("AppName 검증", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "cartpilot-server", config.AppName, "애플리케이션 이름은 'cartpilot-server'여야 합니다")
		assert.NotContains(t, config.AppName, " ", "애플리케이션 이름에는 공백이 포함될 수 없습니다")
	})

	t.Run("ConfigFileName 검증", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "cartpilot-server.json", config.DefaultFilename)
	})
}

// TestBuildInfo는 빌드 타임에 주입되는 정보들의 기본 상태를 검증합니다.
func TestBuildInfo(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, Version, "버전(Version)은 비어있을 수 없습니다")
	assert.NotEmpty(t, BuildDate, "빌드 날짜(BuildDate)는 비어있을 수 없습니다")
	assert.NotEmpty(t, BuildNumber, "빌드 번호(BuildNumber)는 비어있을 수 없습니다")
}

// TestBanner는 시작 배너의 형식을 검증합니다.
func TestBanner(t *testing.T) {
	t.Parallel()

	rendered := fmt.Sprintf(banner, "v1.0.0")
	assert.Contains(t, rendered, "v1.0.0", "배너에 버전이 출력되어야 합니다")
	assert.True(t, strings.HasSuffix(strings.TrimRight(rendered, "\n"), strings.Repeat("-", 80)),
		"배너는 구분선으로 끝나야 합니다")
}
