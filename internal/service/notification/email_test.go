package notification

import (
	"testing"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestEmailSender(captured *[]*gomail.Message) *EmailSender {
	sender := NewEmailSender(&config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@cartpilot.example.com",
	})
	sender.send = func(m *gomail.Message) error {
		*captured = append(*captured, m)
		return nil
	}
	return sender
}

func TestSendAlert(t *testing.T) {
	var captured []*gomail.Message
	sender := newTestEmailSender(&captured)

	target := int64(25_000)
	err := sender.SendAlert("user@example.com", &storage.WishlistItem{
		Title:        "무선 키보드",
		Link:         "https://shopping.example.com/p/1",
		CurrentPrice: 24_000,
		TargetPrice:  &target,
	})
	require.NoError(t, err)

	require.Len(t, captured, 1)
	m := captured[0]

	assert.Equal(t, []string{"noreply@cartpilot.example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"user@example.com"}, m.GetHeader("To"))

	subject := m.GetHeader("Subject")
	require.Len(t, subject, 1)
	assert.Contains(t, subject[0], "무선 키보드")
}

func TestSendAlert_비활성화(t *testing.T) {
	sender := NewEmailSender(&config.SMTPConfig{})

	err := sender.SendAlert("user@example.com", &storage.WishlistItem{Title: "상품"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.Unavailable))
}

func TestSendAlert_수신자없음(t *testing.T) {
	var captured []*gomail.Message
	sender := newTestEmailSender(&captured)

	err := sender.SendAlert("", &storage.WishlistItem{Title: "상품"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	assert.Empty(t, captured)
}

func TestAlertHTML(t *testing.T) {
	html := alertHTML(&storage.WishlistItem{
		Title:        "A<B> 키보드",
		Link:         "https://shopping.example.com/p/1",
		CurrentPrice: 1_234_000,
	})

	// 상품명의 HTML 특수문자는 이스케이프되어야 한다
	assert.Contains(t, html, "A&lt;B&gt; 키보드")
	assert.Contains(t, html, "현재 가격: 1,234,000원")
	assert.Contains(t, html, "상품 보러가기")
	assert.NotContains(t, html, "목표 가격")
}
