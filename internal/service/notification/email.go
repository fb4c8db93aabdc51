package notification

import (
	"fmt"
	"html"
	"strings"

	"github.com/darkkaiser/cartpilot-server/internal/config"
	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/strutil"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"gopkg.in/gomail.v2"
)

// EmailSender SMTP 기반의 이메일 알림 채널입니다.
//
// SMTP 설정이 비어있으면 비활성화 상태로 생성되며, 발송 시도 시 에러를 반환합니다.
type EmailSender struct {
	config *config.SMTPConfig

	// send 메시지 발송 함수. 테스트에서 교체 가능합니다.
	send func(m *gomail.Message) error
}

// NewEmailSender 이메일 알림 발송기를 생성합니다.
func NewEmailSender(smtpConfig *config.SMTPConfig) *EmailSender {
	dialer := gomail.NewDialer(smtpConfig.Host, smtpConfig.Port, smtpConfig.Username, smtpConfig.Password)

	return &EmailSender{
		config: smtpConfig,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
	}
}

// Enabled 이메일 채널의 활성화 여부를 반환합니다.
func (s *EmailSender) Enabled() bool {
	return s.config.Enabled()
}

// SendAlert 최저가 알림 이메일을 발송합니다.
func (s *EmailSender) SendAlert(to string, item *storage.WishlistItem) error {
	if !s.Enabled() {
		return apperrors.New(apperrors.Unavailable, "이메일 채널이 비활성화되어 있습니다 (SMTP 미설정)")
	}
	if to == "" {
		return apperrors.New(apperrors.InvalidInput, "수신자 이메일 주소가 없습니다")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("🛒 CartPilot 최저가 알림 - %s", item.Title))
	m.SetBody("text/html", alertHTML(item))

	if err := s.send(m); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "이메일 발송에 실패했습니다")
	}
	return nil
}

// alertHTML 최저가 알림 이메일 본문(HTML)을 생성합니다.
func alertHTML(item *storage.WishlistItem) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: 'Apple SD Gothic Neo', sans-serif; max-width: 480px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #2c7be5;">🛒 CartPilot 최저가 알림!</h2>`)
	fmt.Fprintf(&b, `<p style="font-size: 16px; font-weight: bold;">%s</p>`, html.EscapeString(item.Title))
	fmt.Fprintf(&b, `<p style="font-size: 20px; color: #e63757;">현재 가격: %s원</p>`,
		strutil.FormatCommas(item.CurrentPrice))

	if item.TargetPrice != nil {
		fmt.Fprintf(&b, `<p style="color: #6e84a3;">목표 가격: %s원</p>`,
			strutil.FormatCommas(*item.TargetPrice))
	}

	if item.Link != "" {
		fmt.Fprintf(&b, `<p><a href="%s" style="display: inline-block; padding: 10px 20px; `+
			`background-color: #2c7be5; color: #ffffff; text-decoration: none; border-radius: 4px;">`+
			`상품 보러가기</a></p>`, html.EscapeString(item.Link))
	}

	b.WriteString(`<p style="color: #95aac9; font-size: 12px;">본 메일은 CartPilot 가격 알림 설정에 따라 발송되었습니다.</p>`)
	b.WriteString(`</div>`)

	return b.String()
}
