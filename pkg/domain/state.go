package domain

// Phase は生成ライフサイクルの状態です。
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// GenerationState は loading / error / result の三状態を保持します。
// 値は遷移メソッド経由でのみ変更し、同時に二つの状態を持たないようにします。
type GenerationState struct {
	phase  Phase
	err    string
	result *ImageResponse
}

// Phase は現在の状態を返します。Phase のゼロ値は idle として扱います。
func (s GenerationState) Phase() Phase {
	if s.phase == "" {
		return PhaseIdle
	}
	return s.phase
}

func (s GenerationState) IsLoading() bool { return s.phase == PhaseLoading }

// Error は failure 状態のエラーメッセージを返します。
func (s GenerationState) Error() string { return s.err }

// Result は success 状態の生成結果を返します。
func (s GenerationState) Result() *ImageResponse { return s.result }

// Loading は以前の結果とエラーを破棄して loading 状態を返します。
func (s GenerationState) Loading() GenerationState {
	return GenerationState{phase: PhaseLoading}
}

// Succeeded は結果を保持する success 状態を返します。
func (s GenerationState) Succeeded(res *ImageResponse) GenerationState {
	return GenerationState{phase: PhaseSuccess, result: res}
}

// Failed はメッセージを保持する failure 状態を返します。
func (s GenerationState) Failed(msg string) GenerationState {
	return GenerationState{phase: PhaseFailure, err: msg}
}
