// Package parser turns raw channel text into a structured payment request.
//
// Extraction strategies are independent matcher functions tried in a fixed
// priority order; the first one that matches wins. The parser only extracts:
// amount floor validation belongs to the caller.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

// DefaultCategory is assigned when the text carries no category.
const DefaultCategory = "other"

// descriptionLimit bounds the fallback description taken from raw text
// when no explicit description field is present.
const descriptionLimit = 100

type matchFunc func(text string) (*model.ParsedRequest, bool)

// Strategies in priority order. Positional beats the conversational keyword
// forms, which beat the labeled form.
var strategies = []matchFunc{
	matchPositional,
	matchKeywordVendor,
	matchKeyword,
	matchLabeled,
}

var (
	// "150000 groceries vegetable purchase"
	positionalRe = regexp.MustCompile(`^(\d[\d,]*)[ \t]+(\p{L}+)[ \t]+(.+)`)

	// "결제요청 150,000원 쿠팡 사무용품 구매" (keyword, amount, vendor, description)
	keywordVendorRe = regexp.MustCompile(`^결제\s*요청\s+(\d[\d,]*)(?:원|won)?\s+(\S+)\s+(.+)`)

	// "결제 요청 150000 점심값" (keyword, amount, description)
	keywordRe = regexp.MustCompile(`^결제\s*요청\s+(\d[\d,]*)(?:원|won)?\s*(.*)`)

	// Labeled fields matched independently anywhere in the text.
	amountLabelRe      = regexp.MustCompile(`(?i)(?:amount|금액)\s*:?\s*(\d[\d,]*)`)
	categoryLabelRe    = regexp.MustCompile(`(?i)(?:category|분류)\s*:?\s*(\S+)`)
	descriptionLabelRe = regexp.MustCompile(`(?i)(?:content|description|내용)\s*:?\s*([^` + "\n" + `]+)`)
	vendorLabelRe      = regexp.MustCompile(`(?i)(?:vendor|업체)\s*:?\s*(\S+)`)
)

// Parse extracts a structured request from free text. The second return is
// false when no strategy found a numeric amount; callers decide whether that
// means "stay silent" (passive scan) or "reply with usage help" (command).
func Parse(text string) (*model.ParsedRequest, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	for _, match := range strategies {
		if req, ok := match(text); ok {
			return req, true
		}
	}
	return nil, false
}

func matchPositional(text string) (*model.ParsedRequest, bool) {
	m := positionalRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	amount, err := parseAmount(m[1])
	if err != nil {
		return nil, false
	}
	return &model.ParsedRequest{
		Amount:      amount,
		Category:    m[2],
		Description: strings.TrimSpace(m[3]),
	}, true
}

func matchKeywordVendor(text string) (*model.ParsedRequest, bool) {
	m := keywordVendorRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	amount, err := parseAmount(m[1])
	if err != nil {
		return nil, false
	}
	return &model.ParsedRequest{
		Amount:      amount,
		Category:    DefaultCategory,
		Description: strings.TrimSpace(m[3]),
		VendorName:  m[2],
	}, true
}

func matchKeyword(text string) (*model.ParsedRequest, bool) {
	m := keywordRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	amount, err := parseAmount(m[1])
	if err != nil {
		return nil, false
	}
	return &model.ParsedRequest{
		Amount:      amount,
		Category:    DefaultCategory,
		Description: strings.TrimSpace(m[2]),
	}, true
}

// matchLabeled handles the structured form. Amount is mandatory; the other
// three labels are optional and may appear in any order.
func matchLabeled(text string) (*model.ParsedRequest, bool) {
	m := amountLabelRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	amount, err := parseAmount(m[1])
	if err != nil {
		return nil, false
	}

	req := &model.ParsedRequest{
		Amount:      amount,
		Category:    DefaultCategory,
		Description: truncate(text, descriptionLimit),
	}
	if c := categoryLabelRe.FindStringSubmatch(text); c != nil {
		req.Category = c[1]
	}
	if d := descriptionLabelRe.FindStringSubmatch(text); d != nil {
		req.Description = strings.TrimSpace(d[1])
	}
	if v := vendorLabelRe.FindStringSubmatch(text); v != nil {
		req.VendorName = v[1]
	}
	return req, true
}

// parseAmount strips thousands separators and parses an integer amount.
// Fractional amounts are not supported.
func parseAmount(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
