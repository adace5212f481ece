package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// payloadFunc renders an alert into a webhook request body.
type payloadFunc func(a *Alert) ([]byte, error)

var payloads = map[string]payloadFunc{
	"slack": slackPayload,
	"teams": teamsPayload,
	"http":  httpPayload,
}

// deliver posts a to every webhook whose URL resolves. Failures are logged
// per target and never returned.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		render, ok := payloads[wh.Type]
		if !ok {
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		body, err := render(a)
		if err == nil {
			err = e.post(url, body)
		}
		log := slog.With("type", wh.Type, "rule", a.RuleName, "component", a.Component)
		if err != nil {
			log.Error("alerts: webhook delivery failed", "err", err)
			continue
		}
		log.Debug("alerts: webhook delivered", "state", a.State)
	}
}

// slackPayload uses a legacy attachment so the message gets a colour bar.
func slackPayload(a *Alert) ([]byte, error) {
	type field struct {
		Title string `json:"title"`
		Value string `json:"value"`
		Short bool   `json:"short"`
	}
	type attachment struct {
		Color  string  `json:"color"`
		Text   string  `json:"text"`
		Fields []field `json:"fields"`
	}
	return json.Marshal(struct {
		Text        string       `json:"text"`
		Attachments []attachment `json:"attachments"`
	}{
		Text: fmt.Sprintf("*%s* %s", severityLabel(a.Severity, a.State), a.RuleName),
		Attachments: []attachment{{
			Color: "#" + severityColor(a.Severity, a.State),
			Text:  a.Message,
			Fields: []field{
				{Title: "Component", Value: a.Component, Short: true},
				{Title: "Value", Value: strconv.FormatFloat(a.Value, 'f', -1, 64), Short: true},
			},
		}},
	})
}

func teamsPayload(a *Alert) ([]byte, error) {
	type fact struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	return json.Marshal(map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity, a.State),
		"summary":    a.RuleName,
		"title":      fmt.Sprintf("%s Supply risk: %s on %s", severityLabel(a.Severity, a.State), a.RuleName, a.Component),
		"sections": []map[string]any{{
			"text": a.Message,
			"facts": []fact{
				{Name: "Component", Value: a.Component},
				{Name: "Severity", Value: a.Severity},
				{Name: "State", Value: a.State},
			},
		}},
	})
}

func httpPayload(a *Alert) ([]byte, error) {
	return json.Marshal(struct {
		Source string `json:"source"`
		Alert  *Alert `json:"alert"`
	}{Source: "riskdash", Alert: a})
}

func (e *Engine) post(url string, body []byte) error {
	resp, err := e.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("alerts: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("alerts: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(sev, state string) string {
	if state == StateResolved {
		return "[RESOLVED]"
	}
	switch sev {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	}
	return "[INFO]"
}

// severityColor returns a hex colour without the leading '#'.
func severityColor(sev, state string) string {
	if state == StateResolved {
		return "2EB67D"
	}
	switch sev {
	case "critical":
		return "E01E5A"
	case "warning":
		return "ECB22E"
	}
	return "36C5F0"
}
