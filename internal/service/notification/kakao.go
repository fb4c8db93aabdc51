package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/darkkaiser/cartpilot-server/internal/pkg/errors"
	"github.com/darkkaiser/cartpilot-server/internal/pkg/strutil"
	"github.com/darkkaiser/cartpilot-server/internal/service/catalog/fetcher"
	"github.com/darkkaiser/cartpilot-server/internal/storage"
	"github.com/tidwall/gjson"
)

// kakaoMemoEndpoint 카카오톡 나에게 보내기 API 엔드포인트
const kakaoMemoEndpoint = "https://kapi.kakao.com/v2/api/talk/memo/default/send"

// kakaoErrCodeInvalidToken 액세스 토큰 만료/무효 에러 코드입니다.
// 이 에러는 재시도해도 성공할 수 없으므로 즉시 대체 채널로 전환해야 합니다.
const kakaoErrCodeInvalidToken = -401

// kakaoButtonTitle 알림 메시지 하단 버튼의 라벨
const kakaoButtonTitle = "상품 보러가기"

// KakaoSender 카카오톡 나에게 보내기(셀프 메모) 채널입니다.
type KakaoSender struct {
	fetcher fetcher.Fetcher
}

// NewKakaoSender 카카오톡 알림 발송기를 생성합니다.
func NewKakaoSender(f fetcher.Fetcher) *KakaoSender {
	return &KakaoSender{fetcher: f}
}

// kakaoTextTemplate 카카오톡 텍스트 템플릿 객체입니다.
type kakaoTextTemplate struct {
	ObjectType  string    `json:"object_type"`
	Text        string    `json:"text"`
	Link        kakaoLink `json:"link"`
	ButtonTitle string    `json:"button_title"`
}

type kakaoLink struct {
	WebURL       string `json:"web_url,omitempty"`
	MobileWebURL string `json:"mobile_web_url,omitempty"`
}

// SendMemo 최저가 알림을 사용자 본인의 카카오톡으로 발송합니다.
//
// 토큰 만료(-401) 시 Unauthorized 에러를 반환하며, 호출 측은 이를
// 대체 채널 전환 신호로 사용합니다.
func (s *KakaoSender) SendMemo(ctx context.Context, accessToken string, item *storage.WishlistItem) error {
	template, err := json.Marshal(kakaoTextTemplate{
		ObjectType:  "text",
		Text:        alertText(item),
		Link:        kakaoLink{WebURL: item.Link, MobileWebURL: item.Link},
		ButtonTitle: kakaoButtonTitle,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "카카오톡 메시지 템플릿 생성에 실패했습니다")
	}

	form := url.Values{"template_object": {string(template)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, kakaoMemoEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "카카오톡 발송 요청 생성에 실패했습니다")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.fetcher.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "카카오톡 발송 요청에 실패했습니다")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "카카오톡 응답을 읽지 못했습니다")
	}

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Get("code").Int() == kakaoErrCodeInvalidToken {
		return apperrors.New(apperrors.Unauthorized, "카카오 액세스 토큰이 만료되었습니다")
	}

	return apperrors.Newf(apperrors.Unavailable,
		"카카오톡 발송에 실패했습니다 (status: %d, msg: %s)", resp.StatusCode, parsed.Get("msg").String())
}

// alertText 최저가 알림 메시지 본문을 생성합니다.
func alertText(item *storage.WishlistItem) string {
	var b strings.Builder

	b.WriteString("🛒 CartPilot 최저가 알림!\n\n")
	b.WriteString(item.Title)
	b.WriteString("\n\n현재 가격: ")
	b.WriteString(strutil.FormatCommas(item.CurrentPrice))
	b.WriteString("원")

	if item.TargetPrice != nil {
		fmt.Fprintf(&b, "\n목표 가격: %s원", strutil.FormatCommas(*item.TargetPrice))
	}

	b.WriteString("\n\n지금이 구매하기 좋은 시점이에요!")

	return b.String()
}
