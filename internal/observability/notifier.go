package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// slackNotifier posts task alerts to a Slack incoming webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts to the given webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// slackMessage is an incoming-webhook payload. Text is the plain fallback
// shown in notifications; Blocks is the rendered message.
type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func mrkdwn(format string, args ...any) slackText {
	return slackText{Type: "mrkdwn", Text: fmt.Sprintf(format, args...)}
}

// Notify posts the alerts as one Slack message. It makes no request when
// alerts is empty.
func (s *slackNotifier) Notify(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(buildSlackMessage(alerts))
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildSlackMessage(alerts []Alert) slackMessage {
	msg := slackMessage{
		Text: "tdeck: " + summarize(alerts),
		Blocks: []slackBlock{{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("tdeck: %d task alert(s)", len(alerts))},
		}},
	}

	for i, a := range alerts {
		if i > 0 {
			msg.Blocks = append(msg.Blocks, slackBlock{Type: "divider"})
		}
		heading := mrkdwn("%s *[%s] %s*", severityEmoji(a.Severity), strings.ToUpper(string(a.Severity)), conditionLabel(a.Condition))

		if a.TaskID == 0 {
			heading.Text += "\n" + a.Message
			msg.Blocks = append(msg.Blocks, slackBlock{Type: "section", Text: &heading})
			continue
		}
		fields := []slackText{mrkdwn("*Task*\n#%d %s", a.TaskID, a.TaskTitle)}
		if !a.DueDate.IsZero() {
			fields = append(fields, mrkdwn("*Due*\n%s (%s)", a.DueDate, relativeDays(a.DueDate, models.DateOf(a.TriggeredAt))))
		}
		msg.Blocks = append(msg.Blocks, slackBlock{Type: "section", Text: &heading, Fields: fields})
	}

	msg.Blocks = append(msg.Blocks, slackBlock{
		Type:     "context",
		Elements: []slackText{mrkdwn("Evaluated %s", alerts[0].TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"))},
	})
	return msg
}

// summarize counts alerts per condition, e.g. "2 overdue, 1 due soon".
func summarize(alerts []Alert) string {
	var overdue, soon, other int
	for _, a := range alerts {
		switch a.Condition {
		case ConditionOverdue:
			overdue++
		case ConditionDueSoon:
			soon++
		default:
			other++
		}
	}
	var parts []string
	if overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", overdue))
	}
	if soon > 0 {
		parts = append(parts, fmt.Sprintf("%d due soon", soon))
	}
	if other > 0 {
		parts = append(parts, fmt.Sprintf("%d other", other))
	}
	return strings.Join(parts, ", ")
}

func conditionLabel(condition string) string {
	switch condition {
	case ConditionOverdue:
		return "Overdue"
	case ConditionDueSoon:
		return "Due soon"
	case ConditionTooManyOpen:
		return "Too many open tasks"
	default:
		return condition
	}
}

// relativeDays describes due relative to today in whole calendar days.
func relativeDays(due, today models.Date) string {
	days := int(due.Time().Sub(today.Time()).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days < 0:
		return fmt.Sprintf("%d days ago", -days)
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "❓"
	}
}
