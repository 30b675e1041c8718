// Package classifier routes questions to the document-grounded pipeline or
// to open conversation. It is a pure keyword-rule engine with no external
// calls; the product deliberately biases toward grounded answers, so only
// the deny-list can suppress retrieval.
package classifier

import "strings"

// minInterrogativeLen is the minimum question length (in runes) for the
// generic-interrogative rule to fire.
const minInterrogativeLen = 12

// rule is one ordered (category, keywords, verdict) entry. Rules are
// evaluated top to bottom; the first match wins.
type rule struct {
	category string
	keywords []string
	grounded bool
}

// Classifier decides whether a question should be answered from the
// document index.
type Classifier struct {
	rules          []rule
	interrogatives []string
}

// New creates a Classifier with the product's default rule set.
// The deny-list comes first so off-topic questions never reach retrieval.
func New() *Classifier {
	return &Classifier{
		rules: []rule{
			{
				category: "deny",
				keywords: []string{
					"thời tiết", "weather",
					"phim", "ca nhạc", "âm nhạc", "game",
					"món ăn", "nấu ăn", "nhà hàng",
					"sức khỏe", "bệnh viện", "thuốc",
					"tình yêu", "người yêu", "hẹn hò",
				},
				grounded: false,
			},
			{
				category: "institution",
				keywords: []string{
					"học phí", "tuyển sinh", "xét tuyển", "điểm chuẩn",
					"học bổng", "ký túc xá", "fpt", "campus",
					"chương trình đào tạo", "chuyên ngành", "ngành học",
					"thực tập", "ojt", "bằng cấp", "tốt nghiệp",
				},
				grounded: true,
			},
			{
				category: "technology",
				keywords: []string{
					"lập trình", "công nghệ thông tin", "phần mềm",
					"developer", "lập trình viên", "kỹ sư",
					"trí tuệ nhân tạo", "dữ liệu", "an ninh mạng",
					"thiết kế đồ họa", "it", "ai", "data",
				},
				grounded: true,
			},
			{
				category: "career",
				keywords: []string{
					"nghề nghiệp", "việc làm", "công việc", "tuyển dụng",
					"mức lương", "lương", "career", "cv", "phỏng vấn",
				},
				grounded: true,
			},
			{
				category: "learning",
				keywords: []string{
					"học tập", "môn học", "khóa học", "đào tạo",
					"kỹ năng", "chứng chỉ", "ôn thi", "tự học",
				},
				grounded: true,
			},
		},
		interrogatives: []string{
			"gì", "nào", "sao", "bao nhiêu", "ở đâu", "thế nào",
			"tại sao", "khi nào", "what", "which", "how", "why", "where",
		},
	}
}

// Classify returns true when the question should be routed to the grounded
// pipeline. Evaluation order: deny-list, then keyword categories by
// priority, then a generic-interrogative heuristic, then default true.
// Empty input falls through to the default.
func (c *Classifier) Classify(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if containsKeyword(q, kw) {
				return r.grounded
			}
		}
	}

	if len([]rune(q)) > minInterrogativeLen {
		for _, w := range c.interrogatives {
			if containsKeyword(q, w) {
				return true
			}
		}
	}

	// Default-true is deliberate product policy: unknown questions are
	// worth a retrieval attempt before falling back to open generation.
	return true
}

// containsKeyword reports whether kw occurs in q on word boundaries.
// Multi-word keywords match as substrings since spaces already bound them.
func containsKeyword(q, kw string) bool {
	if strings.ContainsRune(kw, ' ') {
		return strings.Contains(q, kw)
	}
	for _, tok := range strings.FieldsFunc(q, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!' || r == ':' || r == ';'
	}) {
		if tok == kw {
			return true
		}
	}
	return false
}
