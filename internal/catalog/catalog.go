// Package catalog defines the ordered UI element catalog for the Naver Blog
// app. The calibration workflow and the default coordinate seeding are both
// driven by this single list: adding, removing or reordering entries changes
// session length and seed count without touching either component.
package catalog

import (
	"fmt"
	"sort"
)

// Element describes one UI target: where it sits by default on a given
// resolution, how an operator calibrates it, and whether posting can run
// without it.
type Element struct {
	Kind         ElementKind
	Name         string
	Instructions string
	HelpText     string

	// DefaultPosition computes the resolution-relative default coordinate.
	DefaultPosition func(width, height int) (x, y int)

	// StepOrder is the 1-based position in the calibration workflow.
	StepOrder int

	// Required elements must have a coordinate before a posting run starts.
	Required bool
}

var elements = []Element{
	{
		Kind:         KindMainPlusButton,
		Name:         "+ 아이콘 (메인 화면)",
		Instructions: "네이버 블로그 앱 메인 화면에서 우하단 '+' 아이콘을 클릭하세요.",
		HelpText:     "화면 오른쪽 하단에 있는 플러스(+) 버튼입니다. 클릭하면 메뉴가 열립니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.85), int(float64(h) * 0.93)
		},
		StepOrder: 1,
		Required:  true,
	},
	{
		Kind:         KindWriteMenuBlog,
		Name:         "블로그 글쓰기 버튼",
		Instructions: "메뉴에서 '블로그 글쓰기' 버튼을 클릭하세요.",
		HelpText:     "+ 아이콘을 누른 후 나타나는 메뉴에서 '블로그 글쓰기' 옵션을 선택합니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.50), int(float64(h) * 0.60)
		},
		StepOrder: 2,
		Required:  true,
	},
	{
		Kind:         KindTitleField,
		Name:         "제목 입력 필드",
		Instructions: "에디터 화면에서 '제목을 입력하세요' 영역을 클릭하세요.",
		HelpText:     "에디터 상단의 제목 입력 필드입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.50), int(float64(h) * 0.15)
		},
		StepOrder: 3,
		Required:  true,
	},
	{
		Kind:         KindContentField,
		Name:         "본문 입력 필드",
		Instructions: "에디터 화면에서 본문 입력 영역을 클릭하세요.",
		HelpText:     "제목 아래의 넓은 본문 작성 영역입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.50), int(float64(h) * 0.40)
		},
		StepOrder: 4,
		Required:  true,
	},
	{
		Kind:         KindImageButton,
		Name:         "이미지 추가 버튼",
		Instructions: "에디터 하단 툴바에서 '이미지' 추가 버튼을 클릭하세요.",
		HelpText:     "보통 사진 아이콘으로 표시됩니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.15), int(float64(h) * 0.93)
		},
		StepOrder: 5,
		Required:  false,
	},
	{
		Kind:         KindTextSizeButton,
		Name:         "텍스트 크기 버튼",
		Instructions: "에디터 하단 툴바에서 '텍스트 크기' 버튼(가 아이콘)을 클릭하세요.",
		HelpText:     "텍스트 크기를 변경하는 아이콘입니다. 보통 '가' 또는 'A' 모양입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.70), int(float64(h) * 0.93)
		},
		StepOrder: 6,
		Required:  true,
	},
	{
		Kind:         KindTextSizeSmallest,
		Name:         "최소 텍스트 크기 선택",
		Instructions: "텍스트 크기 팝업에서 '가장 작은 크기'를 클릭하세요.",
		HelpText:     "보통 9pt 또는 가장 왼쪽의 작은 크기 옵션입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.20), int(float64(h) * 0.70)
		},
		StepOrder: 7,
		Required:  true,
	},
	{
		Kind:         KindLinkButton,
		Name:         "링크 추가 버튼",
		Instructions: "이미지를 선택한 상태에서 '링크 추가' 버튼을 클릭하세요.",
		HelpText:     "이미지에 URL을 연결하는 링크 아이콘 버튼입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.65), int(float64(h) * 0.85)
		},
		StepOrder: 8,
		Required:  false,
	},
	{
		Kind:         KindPublishButton,
		Name:         "발행 버튼",
		Instructions: "에디터 상단 우측의 '발행' 버튼을 클릭하세요.",
		HelpText:     "글 작성 완료 후 발행하는 버튼입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.90), int(float64(h) * 0.08)
		},
		StepOrder: 9,
		Required:  true,
	},
	{
		Kind:         KindConfirmButton,
		Name:         "확인 버튼",
		Instructions: "일반적인 '확인' 버튼을 클릭하세요.",
		HelpText:     "다이얼로그나 설정 화면의 확인 버튼입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.65), int(float64(h) * 0.60)
		},
		StepOrder: 10,
		Required:  true,
	},
	{
		Kind:         KindShareButton,
		Name:         "공유 버튼",
		Instructions: "발행 완료 후 '공유' 버튼을 클릭하세요.",
		HelpText:     "발행된 글을 공유하는 버튼입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.90), int(float64(h) * 0.08)
		},
		StepOrder: 11,
		Required:  true,
	},
	{
		Kind:         KindCopyURLButton,
		Name:         "링크 복사 버튼",
		Instructions: "공유 메뉴에서 '링크 복사' 버튼을 클릭하세요.",
		HelpText:     "블로그 포스트 URL을 복사하는 버튼입니다.",
		DefaultPosition: func(w, h int) (int, int) {
			return int(float64(w) * 0.50), int(float64(h) * 0.50)
		},
		StepOrder: 12,
		Required:  true,
	},
}

var byKind = make(map[ElementKind]Element, len(elements))

func init() {
	if err := validate(elements); err != nil {
		panic(err)
	}
	for _, e := range elements {
		byKind[e.Kind] = e
	}
}

// validate enforces catalog invariants: one entry per kind and step orders
// unique and contiguous from 1.
func validate(elems []Element) error {
	seenKind := make(map[ElementKind]bool, len(elems))
	seenOrder := make(map[int]bool, len(elems))
	for _, e := range elems {
		if seenKind[e.Kind] {
			return fmt.Errorf("catalog: duplicate element kind %q", e.Kind)
		}
		seenKind[e.Kind] = true
		if seenOrder[e.StepOrder] {
			return fmt.Errorf("catalog: duplicate step order %d", e.StepOrder)
		}
		seenOrder[e.StepOrder] = true
	}
	for i := 1; i <= len(elems); i++ {
		if !seenOrder[i] {
			return fmt.Errorf("catalog: step orders not contiguous, missing %d", i)
		}
	}
	return nil
}

// Elements returns the catalog sorted by step order.
func Elements() []Element {
	out := make([]Element, len(elements))
	copy(out, elements)
	sort.Slice(out, func(i, j int) bool { return out[i].StepOrder < out[j].StepOrder })
	return out
}

// Size returns the number of catalog entries.
func Size() int { return len(elements) }

// ByKind returns the catalog entry for the given kind.
func ByKind(kind ElementKind) (Element, bool) {
	e, ok := byKind[kind]
	return e, ok
}

// RequiredKinds returns the kinds that must be calibrated before posting.
func RequiredKinds() []ElementKind {
	var kinds []ElementKind
	for _, e := range Elements() {
		if e.Required {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}
