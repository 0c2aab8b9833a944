package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// AlertService emits operational alerts to an ops webhook. Decision and card
// failures happen after the interaction was already acknowledged and have no
// user-visible retry affordance, so they surface here.
type AlertService struct {
	webhookURL string
	client     *http.Client
	log        *logrus.Logger
}

func NewAlertService(webhookURL string, log *logrus.Logger) *AlertService {
	return &AlertService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type alertEmbed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []alertField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type alertField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type alertPayload struct {
	Username string       `json:"username,omitempty"`
	Embeds   []alertEmbed `json:"embeds"`
}

// DecisionFailed reports a decide that errored after the interaction ack.
func (s *AlertService) DecisionFailed(requestID, action, deciderName string, err error) {
	s.send("결재 처리 실패", 0xE74C3C, err, []alertField{
		{Name: "request_id", Value: requestID, Inline: true},
		{Name: "action", Value: action, Inline: true},
		{Name: "decider", Value: deciderName, Inline: true},
	})
}

// CardPostFailed reports an approval card that could not be posted. The
// record stays pending with no card, which needs operator attention.
func (s *AlertService) CardPostFailed(requestID string, err error) {
	s.send("승인 카드 게시 실패", 0xE67E22, err, []alertField{
		{Name: "request_id", Value: requestID, Inline: true},
	})
}

// CardEditFailed reports a decided card that could not be edited in place.
func (s *AlertService) CardEditFailed(requestID string, err error) {
	s.send("승인 카드 수정 실패", 0xE67E22, err, []alertField{
		{Name: "request_id", Value: requestID, Inline: true},
	})
}

func (s *AlertService) send(title string, color int, cause error, fields []alertField) {
	s.log.WithError(cause).WithField("alert", title).Error("operational alert")
	if s.webhookURL == "" {
		return
	}

	payload := alertPayload{
		Username: "pungro-payment-ops",
		Embeds: []alertEmbed{{
			Title:       fmt.Sprintf("🚨 %s", title),
			Description: cause.Error(),
			Color:       color,
			Fields:      fields,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}

	go func() {
		body, err := json.Marshal(payload)
		if err != nil {
			s.log.WithError(err).Error("ops alert marshal failed")
			return
		}
		resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			s.log.WithError(err).Error("ops alert send failed")
			return
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			s.log.WithField("status", resp.StatusCode).Error("ops alert rejected")
		}
	}()
}
