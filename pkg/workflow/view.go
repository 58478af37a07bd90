package workflow

import "github.com/shouni/logo-reimaginer/pkg/domain"

// ImageView はアップロード済み画像の画面表示用情報です。
type ImageView struct {
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	PreviewURL string `json:"preview_url"`
}

// View は UI に返すセッションのスナップショットです。
type View struct {
	Phase      domain.Phase `json:"phase"`
	Error      string       `json:"error,omitempty"`
	FormError  string       `json:"form_error,omitempty"`
	HasResult  bool         `json:"has_result"`
	ResultType string       `json:"result_mime_type,omitempty"`
	CanSubmit  bool         `json:"can_submit"`
	Main       *ImageView   `json:"main,omitempty"`
	Font       *ImageView   `json:"font,omitempty"`
}

// Snapshot は現在の状態を View に変換します。
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:     s.state.Phase(),
		Error:     s.state.Error(),
		FormError: s.formError,
		CanSubmit: s.canSubmitLocked(),
		Main:      imageView(s.main),
		Font:      imageView(s.font),
	}
	if res := s.state.Result(); res != nil {
		v.HasResult = true
		v.ResultType = res.MimeType
	}
	return v
}

// Result は success 状態の生成結果を返します。
func (s *Session) Result() (*domain.ImageResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.state.Result()
	return res, res != nil
}

func imageView(img *domain.UploadedImage) *ImageView {
	if img == nil {
		return nil
	}
	v := &ImageView{Filename: img.Filename, Size: img.Size, MimeType: img.MimeType}
	if img.Preview != nil {
		v.PreviewURL = img.Preview.URL()
	}
	return v
}
