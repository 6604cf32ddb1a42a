package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 실행 결과에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   load → quality → score → history → metrics → document
//   CSV/DB  Coverage  Scorer  Prices    Engine    Report

// Stage represents a pipeline stage
type Stage string

const (
	// StageLoad 종목 팩터 테이블 로드
	// 위치: internal/s0_data/
	StageLoad Stage = "load"

	// StageQuality 팩터 커버리지 검사 (경고만, 실행 중단 없음)
	// 위치: internal/s0_data/quality/
	StageQuality Stage = "quality"

	// StageScore 가중 합산 점수, 순위, 유니버스 선별
	// 위치: internal/scoring/
	StageScore Stage = "score"

	// StageHistory 상위 K + 벤치마크 수정종가 수집 및 날짜 정렬
	// 위치: internal/pricehistory/
	StageHistory Stage = "history"

	// StageMetrics 종목별 위험/수익 지표 계산
	// 위치: internal/metrics/
	StageMetrics Stage = "metrics"

	// StageDocument 보고서 문서 조립
	// 위치: internal/report/
	StageDocument Stage = "document"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageLoad:
		return "종목 팩터 로드"
	case StageQuality:
		return "팩터 커버리지 검사"
	case StageScore:
		return "종합 점수/순위"
	case StageHistory:
		return "가격 이력 수집"
	case StageMetrics:
		return "위험/수익 지표"
	case StageDocument:
		return "보고서 조립"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageLoad,
		StageQuality,
		StageScore,
		StageHistory,
		StageMetrics,
		StageDocument,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
