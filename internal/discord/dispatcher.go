package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/model"
	"github.com/jhk7784/pungro-payment-server/internal/service"
)

const seenReaction = "👀"

// VendorGetter resolves a vendor for card rendering at decision time.
type VendorGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Vendor, error)
}

// Alerter receives failures that happen after the user interaction was
// already acknowledged and thus have no user-visible retry affordance.
type Alerter interface {
	DecisionFailed(requestID, action, deciderName string, err error)
	CardPostFailed(requestID string, err error)
	CardEditFailed(requestID string, err error)
}

// InboundMessage is a passive channel message.
type InboundMessage struct {
	ChannelID  string
	MessageID  string
	AuthorName string
	FromBot    bool
	Text       string
}

// InboundCommand is an explicit slash-command submission.
type InboundCommand struct {
	ChannelID  string
	AuthorName string
	Text       string
}

// DecisionAction is a button press on an approval card.
type DecisionAction struct {
	RequestID   string
	Action      string // service.ActionApprove or service.ActionReject
	DeciderName string
	ChannelID   string // channel holding the approval card
	MessageID   string // the approval card itself
}

// Dispatcher routes inbound channel events to the request pipeline. It never
// panics out of a handler: post-filter failures degrade to a retry message
// (messages, commands) or an ops alert (decisions).
type Dispatcher struct {
	chat              ChatClient
	requests          *service.RequestService
	directory         *service.StoreDirectory
	vendors           VendorGetter
	composer          *service.Composer
	alerts            Alerter
	approvalChannelID string
	log               *logrus.Logger
}

func NewDispatcher(
	chat ChatClient,
	requests *service.RequestService,
	directory *service.StoreDirectory,
	vendors VendorGetter,
	composer *service.Composer,
	alerts Alerter,
	approvalChannelID string,
	log *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		chat:              chat,
		requests:          requests,
		directory:         directory,
		vendors:           vendors,
		composer:          composer,
		alerts:            alerts,
		approvalChannelID: approvalChannelID,
		log:               log,
	}
}

// HandleMessage scans a passive channel message. Non-qualifying messages are
// ignored silently; only after the channel and trigger filters pass does a
// failure produce a user-visible reply.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg InboundMessage) {
	if msg.FromBot {
		return
	}
	store, ok := d.directory.ByChannel(msg.ChannelID)
	if !ok {
		return
	}
	if !looksLikeRequest(msg.Text) {
		return
	}

	result, err := d.requests.Submit(ctx, service.SubmitInput{
		Store:           store,
		RequesterName:   msg.AuthorName,
		Text:            msg.Text,
		OriginChannelID: msg.ChannelID,
		OriginMessageTS: msg.MessageID,
	})
	switch {
	case errors.Is(err, service.ErrNotRecognized):
		// Passive scan stays silent on unrecognized text.
		return
	case errors.Is(err, service.ErrAmountTooSmall):
		d.reply(msg.ChannelID, msg.MessageID, d.composer.UsageText())
		return
	case err != nil:
		d.log.WithError(err).WithField("channel_id", msg.ChannelID).Error("submit failed")
		d.reply(msg.ChannelID, msg.MessageID, d.composer.RetryText())
		return
	}

	d.reply(msg.ChannelID, msg.MessageID, d.composer.ReceiptText(result.Request))
	if err := d.chat.AddReaction(msg.ChannelID, msg.MessageID, seenReaction); err != nil {
		d.log.WithError(err).WithField("request_id", result.Request.ID).Warn("seen reaction failed")
	}
	d.postApprovalCard(ctx, result, store.Name)
}

// HandleCommand processes an explicit submission and returns the text for
// the interaction response, which doubles as the receipt.
func (d *Dispatcher) HandleCommand(ctx context.Context, cmd InboundCommand) string {
	store, ok := d.directory.ByChannel(cmd.ChannelID)
	if !ok {
		return d.composer.ScopeErrorText()
	}

	result, err := d.requests.Submit(ctx, service.SubmitInput{
		Store:           store,
		RequesterName:   cmd.AuthorName,
		Text:            cmd.Text,
		OriginChannelID: cmd.ChannelID,
	})
	switch {
	case errors.Is(err, service.ErrNotRecognized), errors.Is(err, service.ErrAmountTooSmall):
		return d.composer.UsageText()
	case err != nil:
		d.log.WithError(err).WithField("channel_id", cmd.ChannelID).Error("submit failed")
		return d.composer.RetryText()
	}

	d.postApprovalCard(ctx, result, store.Name)
	return d.composer.ReceiptText(result.Request)
}

// HandleDecision runs after the interaction was acknowledged, so failures go
// to the ops alerter instead of the presser.
func (d *Dispatcher) HandleDecision(ctx context.Context, act DecisionAction) {
	outcome := model.StatusApproved
	if act.Action == service.ActionReject {
		outcome = model.StatusRejected
	}

	req, applied, err := d.requests.Decide(ctx, act.RequestID, outcome, act.DeciderName)
	if err != nil {
		d.alerts.DecisionFailed(act.RequestID, act.Action, act.DeciderName, err)
		return
	}

	storeName := ""
	if store, ok := d.directory.ByID(req.StoreID); ok {
		storeName = store.Name
	}
	vendor := d.vendorFor(ctx, req)

	embeds, components := d.composer.DecidedCard(req, storeName, vendor)
	if err := d.chat.UpdateMessage(act.ChannelID, act.MessageID, embeds, components); err != nil {
		d.alerts.CardEditFailed(req.ID, err)
	}

	// A repeat press re-renders the card with the recorded outcome but does
	// not announce the decision again.
	if !applied {
		return
	}
	originTS := ""
	if req.OriginMessageTS != nil {
		originTS = *req.OriginMessageTS
	}
	d.reply(req.OriginChannelID, originTS, d.composer.OutcomeText(req))
}

func (d *Dispatcher) postApprovalCard(ctx context.Context, result *service.SubmitResult, storeName string) {
	card := d.composer.ApprovalCard(result.Request, storeName, result.Vendor)
	messageID, err := d.chat.PostMessage(d.approvalChannelID, card)
	if err != nil {
		d.alerts.CardPostFailed(result.Request.ID, err)
		return
	}
	if err := d.requests.AttachApprovalMessage(ctx, result.Request.ID, messageID); err != nil {
		d.log.WithError(err).WithField("request_id", result.Request.ID).
			Warn("attach approval message failed")
	}
}

func (d *Dispatcher) vendorFor(ctx context.Context, req *model.PaymentRequest) *model.Vendor {
	if req.VendorID == nil {
		return nil
	}
	vendor, err := d.vendors.GetByID(ctx, *req.VendorID)
	if err != nil {
		d.log.WithError(err).WithField("vendor_id", *req.VendorID).Warn("vendor fetch failed")
		return nil
	}
	return vendor
}

func (d *Dispatcher) reply(channelID, messageID, text string) {
	if err := d.chat.PostReply(channelID, messageID, text); err != nil {
		d.log.WithError(err).WithField("channel_id", channelID).Warn("reply failed")
	}
}

// looksLikeRequest is the cheap pre-filter before invoking the parser: a
// leading numeric token or a recognized trigger phrase.
func looksLikeRequest(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if r := []rune(t)[0]; r >= '0' && r <= '9' {
		return true
	}
	lower := strings.ToLower(t)
	return strings.Contains(t, "결제") ||
		strings.Contains(t, "금액") ||
		strings.Contains(lower, "amount")
}
