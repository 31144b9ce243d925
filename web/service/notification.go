package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/apextelemetry/apextelemetry/config"
	"github.com/apextelemetry/apextelemetry/logger"

	"github.com/nikoksr/notify"
)

type Event string

const (
	EventSessionCreated   Event = "session_created"
	EventPitStop          Event = "pit_stop"
	EventSessionRefreshed Event = "session_refreshed"
)

const notifyTimeout = 15 * time.Second

// NotificationData feeds the message templates.
type NotificationData struct {
	Username    string
	SessionName string
	DriverName  string
	RaceDate    string
	Laps        int
	PitLaps     []int
	Link        string
}

// Notifier delivers event messages. Delivery is best effort: implementations log
// failures and never report them to the caller.
type Notifier interface {
	Notify(ctx context.Context, to string, event Event, data NotificationData)
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templateFuncs = template.FuncMap{
	"laps": func(laps []int) string {
		parts := make([]string, len(laps))
		for i, l := range laps {
			parts[i] = strconv.Itoa(l)
		}
		return strings.Join(parts, ", ")
	},
}

func mustMessage(event Event, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(string(event) + "_subject").Funcs(templateFuncs).Parse(subject)),
		body:    template.Must(template.New(string(event) + "_body").Funcs(templateFuncs).Parse(body)),
	}
}

var messages = map[Event]messageTemplate{
	EventSessionCreated: mustMessage(EventSessionCreated,
		`New Race Session Created: {{.SessionName}}`,
		`Hello {{.Username}},

Your race session "{{.SessionName}}" has been created.

Driver: {{.DriverName}}
Race date: {{.RaceDate}}
Laps: {{.Laps}}

View the telemetry: {{.Link}}

Apex Telemetry
`),
	EventPitStop: mustMessage(EventPitStop,
		`Pit Stop Detected: {{.SessionName}}`,
		`Hello {{.Username}},

The latest refresh of "{{.SessionName}}" ({{.DriverName}}) shows {{len .PitLaps}} pit stop(s) on lap(s) {{laps .PitLaps}}.

View the telemetry: {{.Link}}

Apex Telemetry
`),
	EventSessionRefreshed: mustMessage(EventSessionRefreshed,
		`Telemetry Refreshed: {{.SessionName}}`,
		`Hello {{.Username}},

The telemetry for "{{.SessionName}}" ({{.DriverName}}) has been regenerated with {{.Laps}} laps. No pit stops were detected.

View the telemetry: {{.Link}}

Apex Telemetry
`),
}

// RenderNotification returns the subject and body for event.
func RenderNotification(event Event, data NotificationData) (string, string, error) {
	tpl, ok := messages[event]
	if !ok {
		return "", "", fmt.Errorf("unknown notification event %q", event)
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return "", "", err
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

// NotificationService mails event messages through notify. Without mail settings the
// message is only logged.
type NotificationService struct {
	mail       config.MailConfig
	timeout    time.Duration
	newService func(to string) notify.Notifier
}

func NewNotificationService(mail config.MailConfig) *NotificationService {
	return &NotificationService{
		mail:    mail,
		timeout: notifyTimeout,
		newService: func(to string) notify.Notifier {
			return newSMTPMailer(mail, to)
		},
	}
}

func (s *NotificationService) Notify(ctx context.Context, to string, event Event, data NotificationData) {
	subject, body, err := RenderNotification(event, data)
	if err != nil {
		logger.Warning("render notification failed:", err)
		return
	}
	if to == "" || !s.mail.Enabled() {
		logger.Infof("mail not configured, skipping %s notification to %q: %s", event, to, subject)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n := notify.NewWithServices(s.newService(to))
	if err := n.Send(ctx, subject, body); err != nil {
		logger.Warningf("send %s notification to %s failed: %v", event, to, err)
		return
	}
	logger.Infof("sent %s notification to %s", event, to)
}
