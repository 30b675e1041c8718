// Package prompt assembles the grounding payload sent to the generation
// service: persona header, profile hints, recent conversation, retrieved
// passages, web snippets, the question, and the output-format directive,
// in that fixed order. Missing optional sections are omitted entirely so
// the generator never sees empty scaffolding.
package prompt

import (
	"fmt"
	"strings"

	"advisor-ai/internal/retriever"
	"advisor-ai/internal/session"
	"advisor-ai/internal/websearch"
)

const (
	// maxTurns is the number of recent conversation turns included.
	maxTurns = 3
	// passageTokenBudget bounds the total passage text so the prompt stays
	// inside the generation context window.
	passageTokenBudget = 2000
	// maxProfileTraits caps the communication-style traits rendered.
	maxProfileTraits = 5
)

const personaHeader = `Bạn là tư vấn viên tuyển sinh và hướng nghiệp thân thiện của trường.
Ưu tiên tuyệt đối thông tin trong phần TÀI LIỆU THAM KHẢO khi trả lời; chỉ dùng kiến thức chung khi tài liệu không đề cập.
Khi dùng thông tin từ tài liệu, nêu rõ tên nguồn. Không bịa đặt số liệu.`

const formatDirective = `ĐỊNH DẠNG TRẢ LỜI: dùng **in đậm** cho ý chính, danh sách gạch đầu dòng cho các bước hoặc lựa chọn, > trích dẫn cho nội dung lấy nguyên văn từ tài liệu, và ` + "`code`" + ` cho tên thuật ngữ, mã ngành hoặc từ khóa kỹ thuật.`

// Input carries the optional sections of one prompt.
// A nil Outcome (or TierNone) and no snippets yields the
// general-conversation prompt.
type Input struct {
	Question    string
	Turns       []session.Turn
	Outcome     *retriever.Outcome
	WebSnippets []websearch.Snippet
	Profile     *session.Profile
}

// Build assembles the prompt in the fixed composition order.
func Build(in Input) string {
	var b strings.Builder

	b.WriteString(personaHeader)
	b.WriteString("\n\n")

	if block := profileBlock(in.Profile); block != "" {
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	if block := historyBlock(in.Turns); block != "" {
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	if in.Outcome != nil && len(in.Outcome.Passages) > 0 {
		b.WriteString(passagesBlock(in.Outcome.Passages))
		b.WriteString("\n\n")
	}

	if len(in.WebSnippets) > 0 {
		b.WriteString(webBlock(in.WebSnippets))
		b.WriteString("\n\n")
	}

	b.WriteString("CÂU HỎI: ")
	b.WriteString(in.Question)
	b.WriteString("\n\n")
	b.WriteString(formatDirective)

	return b.String()
}

// profileBlock renders profile hints as directive text, never as a raw
// data dump.
func profileBlock(p *session.Profile) string {
	if p == nil {
		return ""
	}

	var lines []string
	if p.Name != "" {
		lines = append(lines, fmt.Sprintf("Người hỏi tên là %s, hãy xưng hô thân thiện với họ.", p.Name))
	}
	if p.Role != "" {
		lines = append(lines, fmt.Sprintf("Họ là %s, hãy điều chỉnh nội dung cho phù hợp.", p.Role))
	}
	if len(p.Traits) > 0 {
		traits := p.Traits
		if len(traits) > maxProfileTraits {
			traits = traits[:maxProfileTraits]
		}
		lines = append(lines, fmt.Sprintf("Phong cách trả lời họ mong muốn: %s.", strings.Join(traits, ", ")))
	}
	if p.Notes != "" {
		lines = append(lines, fmt.Sprintf("Lưu ý thêm về người hỏi: %s", p.Notes))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// historyBlock renders up to maxTurns recent turns whose grounding flag is
// not explicitly false, role-labeled, most recent last.
func historyBlock(turns []session.Turn) string {
	kept := make([]session.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Grounded != nil && !*t.Grounded {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > maxTurns {
		kept = kept[len(kept)-maxTurns:]
	}
	if len(kept) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("HỘI THOẠI GẦN ĐÂY:\n")
	for i, t := range kept {
		label := "Người dùng"
		if t.Role == session.RoleAssistant {
			label = "Tư vấn viên"
		}
		b.WriteString(fmt.Sprintf("%s: %s", label, t.Content))
		if i < len(kept)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// passagesBlock renders retrieved passages, each preceded by its source
// label, truncated to the shared token budget.
func passagesBlock(passages []retriever.Passage) string {
	var b strings.Builder
	b.WriteString("TÀI LIỆU THAM KHẢO:\n")

	remaining := passageTokenBudget
	for _, p := range passages {
		if remaining <= 0 {
			break
		}
		text := truncateTokens(p.Text, remaining)
		remaining -= countTokens(text)

		label := p.SourceLabel
		if label == "" {
			label = "tài liệu"
		}
		b.WriteString(fmt.Sprintf("[Nguồn: %s]\n%s\n", label, text))
	}
	return strings.TrimRight(b.String(), "\n")
}

// webBlock renders web snippets, clearly separated from document passages.
func webBlock(snippets []websearch.Snippet) string {
	var b strings.Builder
	b.WriteString("THÔNG TIN TỪ WEB (tham khảo thêm, kiểm chứng với tài liệu nếu mâu thuẫn):\n")
	for i, s := range snippets {
		b.WriteString(fmt.Sprintf("[%s - %s]\n%s", s.Title, s.URL, s.Snippet))
		if i < len(snippets)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
