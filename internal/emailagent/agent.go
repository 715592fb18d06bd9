// Package emailagent extracts structured fields from raw email text,
// scores its tone, and proposes the follow-up action implied by tone and
// urgency.
package emailagent

import (
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/your-org/docrouter/pkg/intake"
)

var (
	senderPattern    = regexp.MustCompile(`(?i)From:\s*([^\n]+)`)
	subjectPattern   = regexp.MustCompile(`(?i)Subject:\s*([^\n]+)`)
	recipientPattern = regexp.MustCompile(`(?i)To:\s*([^\n]+)`)
	datePattern      = regexp.MustCompile(`(?i)Date:\s*([^\n]+)`)
)

var toneOrder = []string{"angry", "threatening", "urgent", "polite"}

var tonePatterns = map[string][]string{
	"angry": {
		"furious", "angry", "outraged", "frustrated", "annoyed", "terrible service",
		"disappointed", "unacceptable", "worst", "complaint", "demanding", "upset",
		"unprofessional", "never again", "escalate", "incompetent", "!!", "???",
	},
	"threatening": {
		"lawyer", "legal action", "lawsuit", "sue", "court", "legal team", "attorney",
		"consequences", "demand", "immediately", "or else", "ultimatum", "deadline",
		"compensation", "media", "public", "expose", "escalate to", "regulatory",
	},
	"urgent": {
		"urgent", "immediately", "asap", "emergency", "critical", "time-sensitive",
		"deadline", "urgent matter", "promptly", "without delay", "as soon as possible",
		"pressing", "high priority", "expedite", "now", "today",
	},
	"polite": {
		"please", "thank you", "appreciate", "grateful", "kindly", "regards", "sincerely",
		"respectfully", "consideration", "understanding", "assistance", "help", "support",
		"sorry to bother", "at your convenience", "when possible",
	},
}

// ToneAnalysis is the keyword-scored tone of an email body.
type ToneAnalysis struct {
	PrimaryTone string
	Confidence  float64
	Scores      map[string]float64
}

// Agent turns raw email content into a routed agent result.
type Agent struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type Option func(*Agent)

func WithSeed(seed int64) Option {
	return func(a *Agent) { a.rng = rand.New(rand.NewSource(seed)) }
}

func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

func NewAgent(opts ...Option) *Agent {
	a := &Agent{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DetectTone scores each tone by keyword matches; more matches mean higher
// confidence, capped at 0.95. With no indicators the tone is neutral.
func DetectTone(text string) ToneAnalysis {
	lower := strings.ToLower(text)
	scores := make(map[string]float64)

	for tone, keywords := range tonePatterns {
		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				matches++
			}
		}
		if matches > 0 {
			score := 0.4 + float64(matches)*0.1
			if score > 0.95 {
				score = 0.95
			}
			scores[tone] = score
		}
	}

	if len(scores) == 0 {
		scores["neutral"] = 0.6
		return ToneAnalysis{PrimaryTone: "neutral", Confidence: 0.6, Scores: scores}
	}

	// Ties resolve in pattern-table order.
	primary := ""
	for _, tone := range toneOrder {
		score, ok := scores[tone]
		if !ok {
			continue
		}
		if primary == "" || score > scores[primary] {
			primary = tone
		}
	}
	return ToneAnalysis{PrimaryTone: primary, Confidence: scores[primary], Scores: scores}
}

// Process accepts raw email text or a path to an email file.
func (a *Agent) Process(content string) intake.Result {
	text := content
	if info, err := os.Stat(content); err == nil && !info.IsDir() {
		b, err := os.ReadFile(content)
		if err != nil {
			return intake.Result{
				Status: "error",
				Format: "Email",
				Fields: map[string]any{
					"error":        err.Error(),
					"text_excerpt": fmt.Sprintf("Error: %v", err),
				},
				Summary: fmt.Sprintf("Failed to read email file: %v", err),
			}
		}
		text = string(b)
	}

	fields := map[string]any{
		"sender":    firstMatch(senderPattern, text, "Unknown"),
		"subject":   firstMatch(subjectPattern, text, "No Subject"),
		"recipient": firstMatch(recipientPattern, text, "Unknown"),
		"date":      firstMatch(datePattern, text, a.now().Format("2006-01-02 15:04:05")),
	}

	body := extractBody(text)
	fields["body"] = body

	firstPara := body
	if idx := strings.Index(body, "\n\n"); idx >= 0 {
		firstPara = body[:idx]
	}
	fields["issue"] = fields["subject"]
	fields["request"] = truncate(firstPara, 200)

	tone := DetectTone(body)
	fields["tone"] = tone.PrimaryTone
	fields["tone_confidence"] = tone.Confidence
	fields["tone_details"] = tone.Scores
	fields["urgency"] = deriveUrgency(tone)

	action := determineAction(fields)
	trackingID := a.trackingID()
	fields["tracking_id"] = trackingID
	fields["text_excerpt"] = buildSummary(fields, tone, action, body)

	return intake.Result{
		Status:          "processed",
		Format:          "Email",
		Fields:          fields,
		Summary:         fmt.Sprintf("Email from %v with subject: %v", fields["sender"], fields["subject"]),
		SuggestedAction: &action,
		TrackingID:      trackingID,
	}
}

func deriveUrgency(tone ToneAnalysis) string {
	switch {
	case tone.Scores["urgent"] > 0.6:
		return "high"
	case tone.Scores["angry"] > 0.7:
		return "high"
	case tone.Scores["threatening"] > 0.5:
		return "critical"
	default:
		return "normal"
	}
}

func determineAction(fields map[string]any) intake.Suggestion {
	tone, _ := fields["tone"].(string)
	urgency, _ := fields["urgency"].(string)
	subject, _ := fields["subject"].(string)

	switch {
	case tone == "threatening" || urgency == "critical":
		return intake.Suggestion{
			Action:   "escalate",
			Target:   "crm",
			Priority: intake.PriorityCritical,
			Details:  fmt.Sprintf("Escalate to legal/management immediately - %s", subject),
			Endpoint: "/crm/escalate",
		}
	case tone == "angry" && urgency == "high":
		return intake.Suggestion{
			Action:   "escalate",
			Target:   "crm",
			Priority: intake.PriorityHigh,
			Details:  fmt.Sprintf("Customer is upset - %s", subject),
			Endpoint: "/crm/escalate",
		}
	case urgency == "high":
		return intake.Suggestion{
			Action:   "flag",
			Target:   "support",
			Priority: intake.PriorityHigh,
			Details:  fmt.Sprintf("Urgent issue - %s", subject),
			Endpoint: "/support/create_ticket",
		}
	case tone == "polite" && urgency == "normal":
		return intake.Suggestion{
			Action:   "log",
			Target:   "crm",
			Priority: intake.PriorityNormal,
			Details:  fmt.Sprintf("Routine request - %s", subject),
			Endpoint: "/crm/log_communication",
		}
	default:
		return intake.Suggestion{
			Action:   "log",
			Target:   "system",
			Priority: intake.PriorityLow,
			Details:  fmt.Sprintf("Standard message - %s", subject),
			Endpoint: "/system/log",
		}
	}
}

func (a *Agent) trackingID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fmt.Sprintf("EMAIL-%05d", 10000+a.rng.Intn(90000))
}

func firstMatch(re *regexp.Regexp, text string, fallback string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fallback
}

// extractBody returns everything after the header block.
func extractBody(text string) string {
	if idx := strings.Index(text, "\n\n"); idx >= 0 {
		return strings.TrimSpace(text[idx+2:])
	}
	return strings.TrimSpace(text)
}

// truncate cuts on a rune boundary so multi-byte text never yields an
// invalid excerpt.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func buildSummary(fields map[string]any, tone ToneAnalysis, action intake.Suggestion, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sender: %v\n", fields["sender"])
	fmt.Fprintf(&b, "Subject: %v\n", fields["subject"])
	fmt.Fprintf(&b, "Urgency: %v\n", fields["urgency"])
	fmt.Fprintf(&b, "Tone: %s (confidence: %.2f)\n", tone.PrimaryTone, tone.Confidence)
	fmt.Fprintf(&b, "Action: %s (%s priority)\n", action.Action, action.Priority)
	b.WriteString("\nEmail Body (first 300 chars):\n")
	b.WriteString(truncate(body, 300))
	return b.String()
}
