package service

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhk7784/pungro-payment-server/internal/model"
)

// Button custom ids carry the action and the request id as the sole argument.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const (
	colorPending  = 0xF1C40F // Gold
	colorApproved = 0x2ECC71 // Green
	colorRejected = 0xE74C3C // Red
)

const vendorUnassigned = "미지정"

// Composer renders payment requests into chat payloads. Pure formatting:
// it never mutates state and never talks to the platform.
type Composer struct {
	printer   *message.Printer
	minAmount int64
}

func NewComposer(minAmount int64) *Composer {
	return &Composer{
		printer:   message.NewPrinter(language.Korean),
		minAmount: minAmount,
	}
}

// FormatAmount renders an amount with locale thousands separators, e.g.
// "150,000원".
func (c *Composer) FormatAmount(amount int64) string {
	return c.printer.Sprintf("%d원", amount)
}

// ApprovalCard is the interactive message posted to the approval channel:
// the request details plus mutually exclusive approve/reject buttons.
func (c *Composer) ApprovalCard(req *model.PaymentRequest, storeName string, vendor *model.Vendor) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{c.cardEmbed(req, storeName, vendor, colorPending)},
		Components: []discordgo.MessageComponent{c.decisionButtons(req.ID)},
	}
}

// DecidedCard re-renders the card after a decision: action controls removed,
// decision stamp appended. Components is non-nil so the platform clears the
// original buttons on edit.
func (c *Composer) DecidedCard(req *model.PaymentRequest, storeName string, vendor *model.Vendor) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	color := colorApproved
	if req.Status == model.StatusRejected {
		color = colorRejected
	}
	embed := c.cardEmbed(req, storeName, vendor, color)
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "결재 결과",
		Value: c.decisionStamp(req),
	})
	return []*discordgo.MessageEmbed{embed}, []discordgo.MessageComponent{}
}

// ReceiptText acknowledges a submission on the origin thread.
func (c *Composer) ReceiptText(req *model.PaymentRequest) string {
	return fmt.Sprintf("💸 %s 결제 요청이 접수되었습니다. 승인 채널에서 결재를 기다리는 중입니다.", c.FormatAmount(req.Amount))
}

// OutcomeText announces the decision on the origin thread.
func (c *Composer) OutcomeText(req *model.PaymentRequest) string {
	decider := ""
	if req.ProcessedBy != nil {
		decider = *req.ProcessedBy
	}
	if req.Status == model.StatusApproved {
		return fmt.Sprintf("✅ %s 결제 요청이 승인되었습니다. (결재자: %s)", c.FormatAmount(req.Amount), decider)
	}
	return fmt.Sprintf("❌ %s 결제 요청이 거절되었습니다. (결재자: %s)", c.FormatAmount(req.Amount), decider)
}

// UsageText is the format guidance sent when parsing fails or the amount is
// below the floor.
func (c *Composer) UsageText() string {
	return fmt.Sprintf(
		"결제 요청 형식을 확인해 주세요. (최소 금액 %s)\n"+
			"• `150000 식자재 양파 구매`\n"+
			"• `결제요청 150000원 쿠팡 사무용품`\n"+
			"• `amount: 150,000 / category: 식자재 / content: 양파 구매`",
		c.FormatAmount(c.minAmount),
	)
}

// ScopeErrorText is sent when a command runs in a channel with no store.
func (c *Composer) ScopeErrorText() string {
	return "이 채널은 매장과 연결되어 있지 않습니다. 매장 채널에서 다시 시도해 주세요."
}

// RetryText is the generic apology for write/notify phase failures.
func (c *Composer) RetryText() string {
	return "요청 처리 중 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
}

func (c *Composer) cardEmbed(req *model.PaymentRequest, storeName string, vendor *model.Vendor, color int) *discordgo.MessageEmbed {
	vendorName := vendorUnassigned
	if vendor != nil {
		vendorName = vendor.Name
	}
	description := req.Description
	if description == "" {
		description = "-"
	}
	return &discordgo.MessageEmbed{
		Title: "💳 결제 요청",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "매장", Value: storeName, Inline: true},
			{Name: "요청자", Value: req.RequesterName, Inline: true},
			{Name: "금액", Value: c.FormatAmount(req.Amount), Inline: true},
			{Name: "분류", Value: req.Category, Inline: true},
			{Name: "업체", Value: vendorName, Inline: true},
			{Name: "내용", Value: description},
		},
		Timestamp: req.CreatedAt.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: req.ID},
	}
}

func (c *Composer) decisionStamp(req *model.PaymentRequest) string {
	verdict := "✅ 승인"
	if req.Status == model.StatusRejected {
		verdict = "❌ 거절"
	}
	decider, at := "", ""
	if req.ProcessedBy != nil {
		decider = *req.ProcessedBy
	}
	if req.ProcessedAt != nil {
		at = req.ProcessedAt.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("%s — %s (%s)", verdict, decider, at)
}

func (c *Composer) decisionButtons(requestID string) discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "승인",
				Style:    discordgo.SuccessButton,
				CustomID: ActionApprove + ":" + requestID,
			},
			discordgo.Button{
				Label:    "거절",
				Style:    discordgo.DangerButton,
				CustomID: ActionReject + ":" + requestID,
			},
		},
	}
}
